// Package auth implements account authentication for the task manager API:
// password login, access/refresh token pairs, session refresh and logout, and
// social login through Google and GitHub.
//
// Every successful login path ends in the same TokenIssuer, so a session
// started with a password and one started with a social provider have the
// same shape and lifetime, and the refresh/logout machinery treats them alike.
//
// # Components
//
//   - Authenticator: registration, email+password login, password change.
//   - TokenIssuer: mints an access token (pkg/jwt) and a refresh token.
//   - RefreshTokenStore: opaque refresh tokens with revocation and expiry sweep.
//   - SessionRefresher: refresh (same refresh token, fresh roles), logout,
//     access token validation, revoke all sessions of a user.
//   - SocialExchanger: authorization code or provider access token in, local
//     user found or created by email, token pair out. Provider quirks live in
//     ProviderAdapter implementations (NewGoogleAdapter, NewGitHubAdapter).
//   - Sweeper: periodic PurgeExpired, optionally guarded by a distributed Locker.
//
// Persistence is behind the UserStorage, RoleStorage and RefreshTokenStorage
// interfaces. MemoryStore implements them in memory; pkg/auth/pgstore
// implements them on PostgreSQL.
//
// # Wiring
//
//	codec, err := jwt.NewFromString(cfg.JWTSecret)
//	hasher := password.NewHasher(password.WithCost(cfg.BcryptCost))
//	tokens := auth.NewRefreshTokenStore(store)
//	issuer := auth.NewTokenIssuer(codec, tokens, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
//	authn := auth.NewAuthenticator(store, store, hasher, issuer)
//	sessions := auth.NewSessionRefresher(tokens, store, codec, issuer)
//	social := auth.NewSocialExchanger(store, store, hasher, issuer,
//		auth.WithProviders(
//			auth.NewGoogleAdapter(googleCfg),
//			auth.NewGitHubAdapter(githubCfg),
//		),
//	)
//
// # Errors
//
// Failures are sentinel errors matched with errors.Is. Unknown email and wrong
// password both yield ErrInvalidCredentials. StatusCode maps every sentinel to
// the HTTP status a transport layer should answer with.
package auth
