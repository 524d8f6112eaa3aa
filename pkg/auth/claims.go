package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	dbtypes "github.com/evolvespaces/evolve-backend/pkg/db/types"
	"github.com/evolvespaces/evolve-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID      uuid.UUID
	Role        enums.UserRole
	LocationIDs dbtypes.UUIDArray
	JTI         string
}

// AccessTokenClaims represents the typed JWT issued to clients. LocationIDs
// is only populated for managers and scopes which locations they may touch.
type AccessTokenClaims struct {
	UserID      uuid.UUID         `json:"user_id"`
	Role        enums.UserRole    `json:"role"`
	LocationIDs dbtypes.UUIDArray `json:"location_ids,omitempty"`
	jwt.RegisteredClaims
}
