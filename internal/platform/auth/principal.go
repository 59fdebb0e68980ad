package auth

import (
	"context"

	"github.com/google/uuid"
)

// ActorKind identifies what sort of entity is making the request.
type ActorKind string

const (
	ActorDonor    ActorKind = "donor"
	ActorNGO      ActorKind = "ngo"
	ActorHospital ActorKind = "hospital"
	ActorAdmin    ActorKind = "admin"
)

// ValidActorKind reports whether k is one of the known actor kinds.
func ValidActorKind(k ActorKind) bool {
	switch k {
	case ActorDonor, ActorNGO, ActorHospital, ActorAdmin:
		return true
	}
	return false
}

// Principal is the authenticated caller. Every core operation takes it
// explicitly; nothing reads ambient session state.
type Principal struct {
	ID    uuid.UUID
	Kind  ActorKind
	Roles []string
}

type contextKey string

const principalKey contextKey = "principal"

// WithPrincipal returns a context carrying the authenticated principal.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext retrieves the authenticated principal. The second
// return value is false when no auth middleware ran.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}
