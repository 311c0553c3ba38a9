package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"lostfound/internal/domain/entity"
	"lostfound/internal/domain/repository"
	"lostfound/pkg/errors"
)

type firestoreProfileRepository struct {
	client *firestore.Client
}

func NewFirestoreProfileRepository(client *firestore.Client) repository.ProfileRepository {
	return &firestoreProfileRepository{client: client}
}

func (r *firestoreProfileRepository) GetByID(ctx context.Context, id string) (*entity.Profile, error) {
	doc, err := r.client.Collection("profiles").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("User", err)
		}
		return nil, errors.Transport("Failed to get profile", err)
	}

	var profile entity.Profile
	if err := doc.DataTo(&profile); err != nil {
		return nil, errors.Internal("Failed to parse profile data", err)
	}
	profile.ID = doc.Ref.ID

	return &profile, nil
}
