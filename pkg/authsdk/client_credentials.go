package authsdk

import (
	"context"
	"io"
	"net/http"
	"net/url"
)

// Register creates an identity. The confirmation email is sent by the
// service; ConfirmationURL is only set when the service exposes it.
func (c *SDKClient) Register(ctx context.Context, req RegisterRequest) (*RegisterData, error) {
	var data RegisterData
	if _, err := c.postAction(ctx, "register", req, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Login logs the client's session in.
func (c *SDKClient) Login(ctx context.Context, username, password string) (*User, error) {
	var user User
	if _, err := c.postAction(ctx, "login", LoginRequest{Username: username, Password: password}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout logs the client's session out.
func (c *SDKClient) Logout(ctx context.Context) error {
	_, err := c.postAction(ctx, "logout", struct{}{}, nil)
	return err
}

// Status reports whether the client's session is logged in.
func (c *SDKClient) Status(ctx context.Context) (*StatusData, error) {
	var data StatusData
	if _, err := c.postAction(ctx, "status", struct{}{}, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// UpdateEmail changes the address of the logged in identity.
func (c *SDKClient) UpdateEmail(ctx context.Context, req UpdateEmailRequest) (*User, error) {
	var user User
	if _, err := c.postAction(ctx, "updateEmail", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdatePassword replaces the password of the logged in identity.
func (c *SDKClient) UpdatePassword(ctx context.Context, req UpdatePasswordRequest) error {
	_, err := c.postAction(ctx, "updatePassword", req, nil)
	return err
}

// DeleteAccount removes the logged in identity and logs the session out.
func (c *SDKClient) DeleteAccount(ctx context.Context, username, password string) error {
	_, err := c.postAction(ctx, "deleteAccount", DeleteAccountRequest{Username: username, Password: password}, nil)
	return err
}

// ResendConfirmation asks for a new confirmation email. The service answers
// the same way whether or not the address is registered.
func (c *SDKClient) ResendConfirmation(ctx context.Context, email string) error {
	_, err := c.postAction(ctx, "resendConfirmation", ResendConfirmationRequest{Email: email}, nil)
	return err
}

// Confirm redeems a confirmation token and returns the redirect location.
func (c *SDKClient) Confirm(ctx context.Context, token string) (string, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/confirmation/"+url.PathEscape(token), nil, nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusFound {
		return "", parseErrorResponse(resp, body)
	}
	return resp.Header.Get("Location"), nil
}
