/*
Package authsdk provides a client SDK for the Trivia credentials service.

# Overview

The service keeps login state in a server-side session referenced by a
signed cookie. An SDKClient owns a cookie jar, so each client behaves like
one browser and calls made through it share a session:

	client := authsdk.NewSDKClient("https://trivia.example.com")

	_, err := client.Register(ctx, authsdk.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "hunter2",
	})

	user, err := client.Login(ctx, "alice", "hunter2")
	status, err := client.Status(ctx)

# Envelope

Every credentials endpoint answers with a Response envelope. Non-success
envelopes are returned as *APIError values:

  - rejected (404): bad credentials, duplicate username or email, unknown
    confirmation token
  - exception (422): the request body failed schema validation; Cause lists
    the violations
  - exception (500): an unexpected server failure

Use IsRejected and IsValidation to branch on them.

# Confirmation

Confirm redeems the token from a confirmation link. It does not follow the
redirect and returns the portal location instead:

	location, err := client.Confirm(ctx, token)
*/
package authsdk
