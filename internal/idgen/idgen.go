// Package idgen produces unique identifiers for paper entities. Every scheme
// yields ids that sort by creation time.
package idgen

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Generator returns a fresh identifier on every call
type Generator interface {
	NewID() string
}

// Scheme names a generator implementation
type Scheme string

const (
	SchemeUUID     Scheme = "uuid"
	SchemeObjectID Scheme = "objectid"
)

// New returns the generator for the scheme
func New(scheme Scheme) (Generator, error) {
	switch scheme {
	case SchemeUUID, "":
		return UUIDv7{}, nil
	case SchemeObjectID:
		return ObjectID{}, nil
	}
	return nil, fmt.Errorf("unknown id scheme %q", scheme)
}

// UUIDv7 generates RFC 9562 version 7 UUIDs (millisecond timestamp prefix)
type UUIDv7 struct{}

func (UUIDv7) NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails when the random source does
		return uuid.NewString()
	}
	return id.String()
}

// ObjectID generates MongoDB ObjectIDs in hex form (second timestamp prefix)
type ObjectID struct{}

func (ObjectID) NewID() string {
	return primitive.NewObjectID().Hex()
}

// Sequence yields prefix-1, prefix-2, ... and is meant for tests and fixtures
type Sequence struct {
	Prefix string

	mu sync.Mutex
	n  int
}

func (s *Sequence) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return s.Prefix + strconv.Itoa(s.n)
}
