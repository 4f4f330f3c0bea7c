package fauth

import (
	"reflect"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestFromClaimsRoundTrip(t *testing.T) {
	uc := &UserClaims{
		ID:  "a3c5e6ab-0000-4000-8000-000000000001",
		Iss: "finboard",
		Aud: "finboard",
		Iat: 1000,
		Exp: 2000,
	}

	claims := ToClaims(uc)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenStr, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	parsed, err := FromToken(tokenStr)
	if err != nil {
		t.Fatalf("FromToken error: %v", err)
	}

	if !reflect.DeepEqual(parsed, uc) {
		t.Fatalf("parsed claims mismatch\nexpected=%#v\nparsed=%#v", uc, parsed)
	}
}

func TestFromMapClaimsHandlesNumericSub(t *testing.T) {
	mc := jwt.MapClaims{
		"sub": float64(42),
		"iss": "finboard",
		"aud": "finboard",
		"iat": float64(1600),
		"exp": float64(2600),
	}

	uc, err := FromMapClaims(mc)
	if err != nil {
		t.Fatalf("FromMapClaims error: %v", err)
	}

	if uc.ID != "42" {
		t.Fatalf("expected ID 42 got %s", uc.ID)
	}
	if uc.Iat != 1600 || uc.Exp != 2600 {
		t.Fatalf("unexpected timestamps: %+v", uc)
	}
}

func TestToClaimsOmitsEmpty(t *testing.T) {
	uc := &UserClaims{ID: "1"}
	mc := ToClaims(uc)
	if _, ok := mc["iss"]; ok {
		t.Fatalf("expected iss to be omitted when empty")
	}
	if mc["sub"] != "1" {
		t.Fatal("expected sub to be set to ", uc.ID)
	}
}

func TestIsTokenExpired(t *testing.T) {
	expired := ToClaims(&UserClaims{ID: "1", Exp: time.Now().Add(-time.Hour).Unix()})
	tokenStr, err := jwt.NewWithClaims(jwt.SigningMethodHS256, expired).SignedString([]byte("s"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	isExpired, err := IsTokenExpired(tokenStr, 0)
	if err != nil {
		t.Fatalf("IsTokenExpired error: %v", err)
	}
	if !isExpired {
		t.Fatal("expected token to be expired")
	}

	if isExpired, _ := IsTokenExpired("", 0); !isExpired {
		t.Fatal("expected empty token to count as expired")
	}
}
