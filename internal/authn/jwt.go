package authn

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/lerianstudio/eventledger/internal/platform/apperr"
	"github.com/lerianstudio/eventledger/internal/platform/id"
)

// JWTClaims is the custom claim shape this ledger issues and accepts,
// layered over the registered claims (exp, iss, aud) jwt.RegisteredClaims
// already validates.
type JWTClaims struct {
	jwt.RegisteredClaims
	EntityID string   `json:"entityId"`
	RealmID  string   `json:"realmId,omitempty"`
	Scopes   []string `json:"scopes,omitempty"`
}

// JWTVerifier validates bearer tokens signed with an HMAC secret,
// configured via auth.jwtSecret/auth.issuer/auth.audience.
type JWTVerifier struct {
	secret   []byte
	issuer   string
	audience string
}

// NewJWTVerifier builds a JWTVerifier.
func NewJWTVerifier(secret, issuer, audience string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret), issuer: issuer, audience: audience}
}

// Verify parses and validates tokenString, returning the Claims a
// successful API-key verification would have produced.
func (v *JWTVerifier) Verify(tokenString string) (*Claims, error) {
	claims := &JWTClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}

		return v.secret, nil
	}, jwt.WithIssuer(v.issuer), jwt.WithAudience(v.audience))
	if err != nil || !token.Valid {
		return nil, apperr.Unauthenticated("invalid bearer token")
	}

	var realmID *id.ID

	if claims.RealmID != "" {
		r := id.ID(claims.RealmID)
		realmID = &r
	}

	return &Claims{EntityID: id.ID(claims.EntityID), RealmID: realmID, Scopes: claims.Scopes}, nil
}
