package users

// Address is the user's delivery address.
type Address struct {
	Street     string `json:"street" bson:"street"`
	PostalCode string `json:"postalCode" bson:"postalCode"`
	City       string `json:"city" bson:"city"`
}

// User is a storefront account. PasswordHash is only populated on the
// login path; every other lookup excludes it at the query level.
type User struct {
	ID           string  `json:"id"`
	Email        string  `json:"email"`
	PasswordHash string  `json:"-"`
	Name         string  `json:"name"`
	Address      Address `json:"address"`
	IsAdmin      bool    `json:"isAdmin"`
}
