// Package accounts persists mirrored user accounts and their profiles in
// the local database.
//
// Users arrive from the server on login or with a pulled snapshot; the
// repository never assigns user ids. Profiles are created lazily the first
// time a user signs in on this device and are mutated as points are earned.
//
//	repo := accounts.NewSQLiteRepository(tx)
//	_ = repo.UpsertUser(ctx, user)
//	p, _ := repo.EnsureProfile(ctx, user.ID)
package accounts
