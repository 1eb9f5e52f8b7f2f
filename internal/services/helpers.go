package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/campuslink/campus-service/internal/authz"
	"github.com/campuslink/campus-service/internal/models"
	"github.com/campuslink/campus-service/internal/repositories"
)

// resolveCaller loads the caller's governance record. A missing record
// means the token was minted for a user this service has never seen.
func resolveCaller(ctx context.Context, repo repositories.Repository, userID string) (*models.User, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}

	caller, err := repo.User().GetByID(ctx, nil, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("failed to resolve caller: %w", err)
	}

	return caller, nil
}

// authorize runs the policy check for one (resource, action) pair.
// The blocked test comes first so a blocked caller gets a stable error
// regardless of role.
func authorize(caller *models.User, isOwner bool, resource authz.Resource, action authz.Action, resourceID uint) error {
	if caller.IsBlocked() {
		return ErrAccountBlocked
	}

	if !authz.Can(caller, isOwner, resource, action) {
		return NewPermissionError(caller.ID, resourceID, string(resource), string(action), "role not permitted")
	}

	return nil
}

// toJSON marshals a value into a JSON column, or nil for empty input.
func toJSON(v interface{}) datatypes.JSON {
	if v == nil {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(data)
}

// pageOf derives the 1-based page number from limit/offset for list
// responses.
func pageOf(limit, offset int) int {
	if limit <= 0 {
		return 1
	}
	return offset/limit + 1
}
