// Package auth provides the authentication providers of the application.
//
// Four providers are supported, each resolving a stable username and a
// canonical attribute set before handing off to the population engine:
//   - LocalProvider: username/password against the local database with
//     Argon2id password hashing
//   - CASProvider: service ticket validation against a CAS server
//   - ShibbolethProvider: identity assertion via trusted reverse proxy headers
//   - OIDCProvider: authorization code exchange and userinfo fetch against an
//     OpenID Connect provider
//
// Every external provider get-or-creates the account before population runs,
// so the populator can rely on the account existing. Provider-specific
// transport and protocol errors are translated into the package's sentinel
// errors before they reach callers.
package auth
