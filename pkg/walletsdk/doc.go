/*
Package walletsdk provides a client SDK for the wallet service.

# Overview

A wallet is identified by an Ed25519 key pair. The SDK proves possession of
the private key during registration, obtains an OAuth style token pair, and
then calls the wallet endpoints with the access token. When the service
rejects the access token the SDK recovers on its own: it refreshes the pair,
falls back to a full registration if the refresh token has expired, and
retries the request once.

	client, err := walletsdk.New(walletsdk.Config{
		APIURL:     "https://wallet.example.com",
		PrivateKey: os.Getenv("WALLET_PRIVATE_KEY"),
	})

	// Obtain tokens (or Restore them from a TokenPersister)
	registered, err := client.Register(ctx)

	badges, err := client.Badges().My(ctx, registered.WalletID)

# Registration

Registration is a three step handshake against the /register endpoints:

 1. /register/keys sends the public key and receives a nonce
 2. /register/auth sends the nonce and a PKCE challenge and receives an
    authorization code
 3. /register/access exchanges the code and the PKCE verifier for tokens

The first two steps are signed with the private key. The signature is sent
hex encoded in the X-API-Signature header.

# Recovery

Every endpoint goes through Executor.Execute, which runs a small state
machine per call:

	initial --401--> recovering --ok--> retrying --> done
	   |                  |
	   +--other-----------+--failed--> done

Only a 401 that carries its request triggers recovery. Any other failure is
returned unchanged. A failed refresh or registration is returned as a
*RecoveryError wrapping the failure of that call, use errors.As to reach the
underlying *ResponseError. Request descriptors are values, the retry only
replaces the Authorization header of a copy.

Concurrent calls that hit a 401 with the same refresh token share one
recovery. Set Config.DisableRecoveryCoalescing to let every call recover on
its own.

# Persistence

CredentialStore holds the token pair in memory. A TokenPersister keeps it
across restarts; internal/tokencache/sqlite stores pairs encrypted at rest.

# Error Handling

Use Classify to branch on the kind of failure:

	switch walletsdk.Classify(err) {
	case walletsdk.FailureTransport:
		// network error, nothing was answered
	case walletsdk.FailureRecovery:
		// tokens could not be recovered, register again
	case walletsdk.FailureStatus:
		// walletsdk.StatusCode(err) holds the status
	}

# Thread Safety

Client, Executor and CredentialStore are safe for concurrent use.
*/
package walletsdk
