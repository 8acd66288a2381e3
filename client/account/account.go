// Package account holds the signed-in customer operations: session and wishlist.
package account

import (
	"context"
	"strconv"
	"time"

	"storefront.GO/client/request"
	"storefront.GO/client/search"
)

// Customer is the signed-in shopper.
type Customer struct {
	ID        int    `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// WishlistItem is a saved product.
type WishlistItem struct {
	ProductID int            `json:"productId"`
	AddedAt   time.Time      `json:"addedAt"`
	Product   search.Product `json:"product"`
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type addWishlist struct {
	ProductID int `json:"productId"`
}

// Service calls the account endpoints.
type Service struct {
	api *request.Client
}

// New wraps api.
func New(api *request.Client) *Service {
	return &Service{api: api}
}

// Login starts a session. The server sets the credential cookies.
func (s *Service) Login(ctx context.Context, email, password string) (Customer, error) {
	var c Customer
	err := s.api.Post(ctx, "/api/auth/login", credentials{Email: email, Password: password}, &c)
	return c, err
}

// Logout ends the session on the server and forgets local credentials, even
// when the server call fails.
func (s *Service) Logout(ctx context.Context) error {
	err := s.api.Post(ctx, "/api/auth/logout", nil, nil)
	s.api.Gateway().Reset()
	return err
}

// Me returns the signed-in customer.
func (s *Service) Me(ctx context.Context) (Customer, error) {
	var c Customer
	err := s.api.Get(ctx, "/api/auth/me", nil, &c)
	return c, err
}

// Wishlist lists saved products, newest first.
func (s *Service) Wishlist(ctx context.Context) ([]WishlistItem, error) {
	var items []WishlistItem
	err := s.api.Get(ctx, "/api/wishlist", nil, &items)
	return items, err
}

// AddToWishlist saves a product. Saving it twice is not an error.
func (s *Service) AddToWishlist(ctx context.Context, productID int) (WishlistItem, error) {
	var item WishlistItem
	err := s.api.Post(ctx, "/api/wishlist", addWishlist{ProductID: productID}, &item)
	return item, err
}

// RemoveFromWishlist forgets a saved product.
func (s *Service) RemoveFromWishlist(ctx context.Context, productID int) error {
	return s.api.Delete(ctx, "/api/wishlist/"+strconv.Itoa(productID), nil)
}
