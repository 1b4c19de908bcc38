// Package main provides the entry point for the GoCampusAuth identity
// service. It runs a web server using the Fiber framework that validates
// external identity assertions (CAS tickets, Shibboleth proxy headers, OIDC
// authorization codes and local credentials), reconciles them into local
// accounts, profiles and access-group memberships via gorm, and answers
// signed token pairs consumed by downstream applications.
package main
