// Package cart holds the in-progress booking selection between the date
// step and the checkout step. It is ephemeral session state keyed by user,
// TTL-bounded in redis; nothing here is authoritative for availability.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrCartNotFound = errors.New("no booking in progress")
	ErrNoDates      = errors.New("rental dates not selected")
	ErrNoSelection  = errors.New("vehicle and details not selected")
)

// Selection is the second cart step: the chosen vehicle plus the personal
// details required on the booking.
type Selection struct {
	VehicleID  int    `json:"vehicle_id"`
	GovID      string `json:"gov_id"`
	License    string `json:"license"`
	StartPoint string `json:"start_point"`
	EndPoint   string `json:"end_point"`
}

type Cart struct {
	RentalStart string     `json:"rental_start"`
	RentalEnd   string     `json:"rental_end"`
	Selection   *Selection `json:"selection,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Complete reports whether both steps are present and checkout can proceed.
func (c *Cart) Complete() bool {
	return c.RentalStart != "" && c.RentalEnd != "" && c.Selection != nil
}

type Store struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewStore(redisAddr string, ttl time.Duration) *Store {
	return &Store{
		redis: redis.NewClient(&redis.Options{
			Addr: redisAddr,
		}),
		ttl: ttl,
	}
}

// NewStoreWithClient is used by tests to inject a mock client.
func NewStoreWithClient(client *redis.Client, ttl time.Duration) *Store {
	return &Store{redis: client, ttl: ttl}
}

func cartKey(userID int) string {
	return fmt.Sprintf("cart:%d", userID)
}

func (s *Store) Get(ctx context.Context, userID int) (*Cart, error) {
	data, err := s.redis.Get(ctx, cartKey(userID)).Result()
	if err == redis.Nil {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, err
	}

	var cart Cart
	if err := json.Unmarshal([]byte(data), &cart); err != nil {
		return nil, err
	}

	return &cart, nil
}

// SetDates starts or restarts a booking. Changing dates drops any previous
// vehicle selection: it was made against the old range.
func (s *Store) SetDates(ctx context.Context, userID int, start, end string) (*Cart, error) {
	cart := &Cart{
		RentalStart: start,
		RentalEnd:   end,
		UpdatedAt:   time.Now().UTC(),
	}

	if err := s.save(ctx, userID, cart); err != nil {
		return nil, err
	}

	return cart, nil
}

// SetSelection records the vehicle and personal details; requires dates to
// have been selected first.
func (s *Store) SetSelection(ctx context.Context, userID int, sel Selection) (*Cart, error) {
	cart, err := s.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrCartNotFound) {
			return nil, ErrNoDates
		}
		return nil, err
	}

	cart.Selection = &sel
	cart.UpdatedAt = time.Now().UTC()

	if err := s.save(ctx, userID, cart); err != nil {
		return nil, err
	}

	return cart, nil
}

func (s *Store) Clear(ctx context.Context, userID int) error {
	return s.redis.Del(ctx, cartKey(userID)).Err()
}

func (s *Store) save(ctx context.Context, userID int, cart *Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return err
	}

	return s.redis.Set(ctx, cartKey(userID), data, s.ttl).Err()
}

func (s *Store) Close() error {
	return s.redis.Close()
}
