package domain

// Directory is the full set of user records, persisted as one JSON
// document in the object store. All operations work on an in-memory
// snapshot; persisting it back is the caller's job.
type Directory struct {
	Users []User `json:"users"`
}

// Find returns the record matching the identity, case-insensitively.
func (d *Directory) Find(email string) (User, bool) {
	email = NormalizeEmail(email)
	for _, u := range d.Users {
		if NormalizeEmail(u.Email) == email {
			return u, true
		}
	}
	return User{}, false
}

// Upsert inserts the record, or replaces the existing record with the
// same identity. Identity uniqueness is enforced here: there is never
// more than one record per normalized email.
func (d *Directory) Upsert(user User) {
	email := NormalizeEmail(user.Email)
	for i, u := range d.Users {
		if NormalizeEmail(u.Email) == email {
			d.Users[i] = user
			return
		}
	}
	d.Users = append(d.Users, user)
}

// Remove deletes the record matching the identity. Returns false if no
// such record existed.
func (d *Directory) Remove(email string) bool {
	email = NormalizeEmail(email)
	for i, u := range d.Users {
		if NormalizeEmail(u.Email) == email {
			d.Users = append(d.Users[:i], d.Users[i+1:]...)
			return true
		}
	}
	return false
}
