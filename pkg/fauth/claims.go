// Package fauth holds the token claim mapping and password hashing
// primitives shared by the finboard server and the finctl CLI.
package fauth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// UserClaims is the payload of a finboard access token. The token is
// deliberately minimal: the subject is the user ID and everything else is
// fetched fresh from the database on each authenticated request.
//
// Important: when populated via ParseTokenClaims/FromToken the signature has
// NOT been verified. Do not use these values for security decisions unless
// the token came through a verifying parse.
type UserClaims struct {
	ID  string
	Iss string
	Aud string
	Iat int64
	Exp int64
}

// ParseTokenClaims extracts raw claims from a JWT without verifying its
// signature. This is useful for clients that need to inspect token payloads
// but do not possess the issuer's signing key. The returned MapClaims will
// contain numeric timestamps as float64 per the jwt library behavior.
// WARNING: do not rely on this for authorization.
func ParseTokenClaims(tokenStr string) (jwt.MapClaims, error) {
	var claims jwt.MapClaims
	parser := new(jwt.Parser)
	_, _, err := parser.ParseUnverified(tokenStr, &claims)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// FromToken parses a JWT without verification and maps it into UserClaims.
func FromToken(tokenStr string) (*UserClaims, error) {
	claims, err := ParseTokenClaims(tokenStr)
	if err != nil {
		return nil, err
	}
	return FromMapClaims(claims)
}

// FromMapClaims maps token claims into a stable UserClaims structure. It
// tolerates both string and numeric forms of the `sub`, `iat`, and `exp`
// claims and normalizes them into strings/int64s.
func FromMapClaims(mc jwt.MapClaims) (*UserClaims, error) {
	uc := &UserClaims{}

	if sub, ok := mc["sub"]; ok {
		switch v := sub.(type) {
		case string:
			uc.ID = v
		case float64:
			uc.ID = strconv.FormatInt(int64(v), 10)
		default:
			uc.ID = fmt.Sprintf("%v", v)
		}
	}

	if iss, ok := mc["iss"].(string); ok {
		uc.Iss = iss
	}
	if aud, ok := mc["aud"].(string); ok {
		uc.Aud = aud
	}

	if iat, ok := mc["iat"]; ok {
		switch v := iat.(type) {
		case float64:
			uc.Iat = int64(v)
		case int64:
			uc.Iat = v
		}
	}

	if exp, ok := mc["exp"]; ok {
		switch v := exp.(type) {
		case float64:
			uc.Exp = int64(v)
		case int64:
			uc.Exp = v
		}
	}

	return uc, nil
}

// ToClaims converts a UserClaims into jwt.MapClaims suitable for signing by
// the server. Numeric timestamp fields must be set by the caller (iat/exp)
// in unix seconds.
func ToClaims(uc *UserClaims) jwt.MapClaims {
	mc := jwt.MapClaims{}
	if uc.ID != "" {
		mc["sub"] = uc.ID
	}
	if uc.Iss != "" {
		mc["iss"] = uc.Iss
	}
	if uc.Aud != "" {
		mc["aud"] = uc.Aud
	}
	if uc.Iat != 0 {
		mc["iat"] = uc.Iat
	}
	if uc.Exp != 0 {
		mc["exp"] = uc.Exp
	}
	return mc
}

// IsTokenExpired returns true when the access token is expired or within the
// provided skew window. It relies on FromToken to parse the JWT without
// verifying the signature, which is sufficient for local UX decisions.
func IsTokenExpired(token string, skew time.Duration) (bool, error) {
	if token == "" {
		return true, nil
	}
	uc, err := FromToken(token)
	if err != nil {
		return true, err
	}
	if uc.Exp == 0 {
		return false, nil
	}
	expiresAt := time.Unix(uc.Exp, 0).Add(-skew)
	return time.Now().After(expiresAt), nil
}
