package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// SafeInvalidatePattern safely invalidates cache pattern with logging
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete safely deletes cache keys with logging
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// BatchInvalidate invalidates multiple patterns in batch
func BatchInvalidate(ctx context.Context, helper *CacheHelper, patterns []string) error {
	var lastErr error
	for _, pattern := range patterns {
		if err := helper.InvalidatePattern(ctx, pattern); err != nil {
			lastErr = err
			slog.ErrorContext(ctx, "Failed to invalidate pattern in batch",
				"error", err,
				"pattern", pattern)
		}
	}
	return lastErr
}

// InvalidateGrievanceCache invalidates all grievance-related caches
func InvalidateGrievanceCache(ctx context.Context, cm *CacheManager, grievanceID uint, ownerID string) {
	SafeDelete(ctx, cm.Grievance,
		fmt.Sprintf("id:%d", grievanceID),
		fmt.Sprintf("details:%d", grievanceID))

	SafeInvalidatePattern(ctx, cm.Grievance, fmt.Sprintf("owner:%s:*", ownerID))
	SafeInvalidatePattern(ctx, cm.Grievance, "list:*")
	SafeInvalidatePattern(ctx, cm.Stats, "grievance:*")
}

// InvalidatePostingCache invalidates caches for an opportunity or
// internship posting. kind is the list-key prefix ("opportunity" or
// "internship").
func InvalidatePostingCache(ctx context.Context, cm *CacheManager, kind string, postingID uint, posterID string) {
	SafeDelete(ctx, cm.Posting, fmt.Sprintf("%s:id:%d", kind, postingID))
	SafeInvalidatePattern(ctx, cm.Posting, fmt.Sprintf("%s:list:*", kind))
	SafeInvalidatePattern(ctx, cm.Posting, fmt.Sprintf("%s:poster:%s:*", kind, posterID))
}

// InvalidateUserCache invalidates the cached governance record for a
// user. Called on every role or status change so the request-time
// identity resolution never sees a stale role.
func InvalidateUserCache(ctx context.Context, cm *CacheManager, userID string) {
	SafeDelete(ctx, cm.User, fmt.Sprintf("id:%s", userID))
	SafeInvalidatePattern(ctx, cm.User, "list:*")
	SafeInvalidatePattern(ctx, cm.Stats, "dashboard:*")
}

// InvalidateStatsCache drops dashboard and aggregate counters after a
// write that changes any counted entity.
func InvalidateStatsCache(ctx context.Context, cm *CacheManager) {
	SafeInvalidatePattern(ctx, cm.Stats, "*")
}
