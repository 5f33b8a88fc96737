// internal/aws/cognito.go
package aws

import (
	"context"
	"errors"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"

	appErrors "github.com/unclebandit/togetherunite-backend/internal/errors"
	"github.com/unclebandit/togetherunite-backend/internal/model"
)

type cognitoAPI interface {
	AdminGetUser(ctx context.Context, params *cognitoidentityprovider.AdminGetUserInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.AdminGetUserOutput, error)
}

// CognitoDirectory looks users up in a Cognito user pool.
type CognitoDirectory struct {
	client     cognitoAPI
	userPoolID string
}

func NewCognitoDirectory(cfg awssdk.Config, userPoolID string) *CognitoDirectory {
	return &CognitoDirectory{client: cognitoidentityprovider.NewFromConfig(cfg), userPoolID: userPoolID}
}

func (d *CognitoDirectory) GetUser(ctx context.Context, userID string) (*model.IdentityProfile, error) {
	out, err := d.client.AdminGetUser(ctx, &cognitoidentityprovider.AdminGetUserInput{
		UserPoolId: awssdk.String(d.userPoolID),
		Username:   awssdk.String(userID),
	})
	if err != nil {
		var notFound *types.UserNotFoundException
		if errors.As(err, &notFound) {
			return nil, &appErrors.IdentityNotFoundError{UserID: userID}
		}
		return nil, &appErrors.IdentityProviderError{Cause: err}
	}

	profile := &model.IdentityProfile{
		Username:   awssdk.ToString(out.Username),
		Enabled:    out.Enabled,
		UserStatus: string(out.UserStatus),
	}
	for _, attr := range out.UserAttributes {
		profile.UserAttributes = append(profile.UserAttributes, model.IdentityAttribute{
			Name:  awssdk.ToString(attr.Name),
			Value: awssdk.ToString(attr.Value),
		})
	}
	return profile, nil
}
