package service

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/yourname/exercisetracker/internal"
	"github.com/yourname/exercisetracker/internal/storage"
)

const MsgUserNotFound = "User not found"

// userError turns a missing user into a 404 AppError and passes anything else through.
func userError(err error) error {
	if errors.Is(err, storage.ErrUserNotFound) {
		return internal.NewAppError(http.StatusNotFound, MsgUserNotFound)
	}
	return err
}

type CreateUserRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
}

func ValidateCreateUserRequest(req *CreateUserRequest) error {
	req.Username = strings.TrimSpace(req.Username)
	return validateStruct(req)
}

func CreateUser(ctx context.Context, userRepo storage.UserRepository, req *CreateUserRequest) (*internal.User, error) {
	user := &internal.User{
		ID:       uuid.NewString(),
		Username: req.Username,
	}
	if err := userRepo.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func GetUser(ctx context.Context, userRepo storage.UserRepository, id string) (*internal.User, error) {
	user, err := userRepo.GetUser(ctx, id)
	if err != nil {
		return nil, userError(err)
	}
	return user, nil
}
