package types

// Principal is the optional local owner of a payment (the signed-in user of
// the host application).
type Principal struct {
	ID       string `json:"id" binding:"required"`
	FullName string `json:"full_name"`
	Email    string `json:"email" binding:"omitempty,email"`
}
