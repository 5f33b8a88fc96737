package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	appErrors "github.com/unclebandit/togetherunite-backend/internal/errors"
	"github.com/unclebandit/togetherunite-backend/internal/logger"
	"github.com/unclebandit/togetherunite-backend/internal/model"
	"github.com/unclebandit/togetherunite-backend/internal/repository"
)

// IdentityDirectory looks up users in the external identity provider.
type IdentityDirectory interface {
	GetUser(ctx context.Context, userID string) (*model.IdentityProfile, error)
}

type AdvocateService struct {
	Directory    IdentityDirectory
	AdvocateRepo repository.AdvocateRepositoryInterface
	Logger       *zap.Logger
}

type ResolveAdvocateInput struct {
	UserID string `json:"user_id" validate:"required"`
	Email  string `json:"email" validate:"omitempty,email"`
	Name   string `json:"name"`
}

type ResolveAdvocateResult struct {
	User     *model.IdentityProfile `json:"user"`
	Advocate *model.Advocate        `json:"advocate"`
}

// ResolveOrCreate returns the identity profile and the local advocate
// record for a user, creating the advocate on first sight. Existing
// advocates are never modified.
func (s *AdvocateService) ResolveOrCreate(ctx context.Context, in ResolveAdvocateInput) (*ResolveAdvocateResult, error) {
	log := logger.OrNop(s.Logger)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	profile, err := s.Directory.GetUser(ctx, in.UserID)
	if err != nil {
		var notFound *appErrors.IdentityNotFoundError
		var provider *appErrors.IdentityProviderError
		if errors.As(err, &notFound) || errors.As(err, &provider) {
			return nil, err
		}
		return nil, &appErrors.IdentityProviderError{Cause: err}
	}

	advocate, err := s.AdvocateRepo.GetByUserID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	if advocate == nil {
		advocate = &model.Advocate{
			UserID: in.UserID,
			Email:  firstNonEmpty(in.Email, profile.Attribute("email")),
			Name:   firstNonEmpty(in.Name, profile.Attribute("name")),
		}
		if advocate.Email == "" {
			return nil, appErrors.NewValidation("Missing required fields: email")
		}
		if err := s.AdvocateRepo.Create(ctx, advocate); err != nil {
			return nil, err
		}
		log.Info("advocate created", zap.String("advocate_id", advocate.ID), zap.String("user_id", in.UserID))
	}

	return &ResolveAdvocateResult{User: profile, Advocate: advocate}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
