package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const refreshType = "refresh"

var ErrWrongTokenType = errors.New("wrong token type")

type AccessClaims struct {
	Staff bool `json:"staff"`
	jwt.RegisteredClaims
}

type RefreshClaims struct {
	Staff bool   `json:"staff"`
	Type  string `json:"typ"`
	jwt.RegisteredClaims
}

// Issuer signs access and refresh tokens with separate HS256 secrets.
type Issuer struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration

	now func() time.Time
}

func NewIssuer(accessSecret, refreshSecret []byte, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{
		AccessSecret:  accessSecret,
		RefreshSecret: refreshSecret,
		AccessTTL:     accessTTL,
		RefreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

func (i *Issuer) clock() time.Time {
	if i.now == nil {
		return time.Now()
	}
	return i.now()
}

func (i *Issuer) SignAccess(userID uuid.UUID, staff bool) (string, time.Time, error) {
	now := i.clock()
	exp := now.Add(i.AccessTTL)
	claims := AccessClaims{
		Staff: staff,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.AccessSecret)
	return s, exp, err
}

func (i *Issuer) SignRefresh(userID uuid.UUID, staff bool) (string, time.Time, error) {
	now := i.clock()
	exp := now.Add(i.RefreshTTL)
	claims := RefreshClaims{
		Staff: staff,
		Type:  refreshType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.RefreshSecret)
	return s, exp, err
}
