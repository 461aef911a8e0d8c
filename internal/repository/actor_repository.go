package repository

import (
	"context"

	"github.com/noah-isme/perum-adp-api/internal/models"
	"github.com/noah-isme/perum-adp-api/pkg/docstore"
)

// usersCollection is the directory written by the estate's identity service.
const usersCollection = "users"

// ActorRepository reads the user directory that record payloads reference.
type ActorRepository struct {
	store docstore.Store
}

// NewActorRepository constructs the repository.
func NewActorRepository(store docstore.Store) *ActorRepository {
	return &ActorRepository{store: store}
}

// FindByID performs one point lookup. A missing user surfaces
// docstore.ErrNotFound so the resolver can distinguish absence from outage.
func (r *ActorRepository) FindByID(ctx context.Context, id string) (*models.Actor, error) {
	doc, err := r.store.Collection(usersCollection).Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return actorFromDocument(doc), nil
}

func actorFromDocument(doc *docstore.Document) *models.Actor {
	actor := &models.Actor{ID: doc.ID}
	if v, ok := doc.Fields["fullName"].(string); ok {
		actor.FullName = v
	}
	if v, ok := doc.Fields["firstName"].(string); ok {
		actor.FirstName = v
	}
	if v, ok := doc.Fields["lastName"].(string); ok {
		actor.LastName = v
	}
	if v, ok := doc.Fields["email"].(string); ok {
		actor.Email = v
	}
	if v, ok := doc.Fields["phone"].(string); ok {
		actor.Phone = v
	}
	return actor
}
