package models

// All lists every model that is migrated.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Category{},
		&Product{},
		&RevokedToken{},
		&PasswordResetToken{},
	}
}
