package api

import "time"

// User is the account returned by the user endpoints.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// userData wraps the user in the register/login/refresh responses.
type userData struct {
	User *User `json:"user"`
}

// URLItem is one shortened URL owned by the signed-in user.
type URLItem struct {
	ID          string    `json:"id"`
	OriginalURL string    `json:"originalUrl"`
	ShortURL    string    `json:"shortUrl"`
	ShortCode   string    `json:"shortCode"`
	ClickCount  int       `json:"clickCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ShortenResult is the POST /url/shorten response data.
type ShortenResult struct {
	OriginalURL string `json:"originalUrl"`
	ShortURL    string `json:"shortUrl"`
	ShortCode   string `json:"shortCode"`
	ClickCount  int    `json:"clickCount"`
}

// registerRequest is the POST /user/register request.
type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginRequest is the POST /user/login request.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// shortenRequest is the POST /url/shorten request.
type shortenRequest struct {
	OriginalURL string `json:"originalUrl"`
}
