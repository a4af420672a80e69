package repoargs

type CreateAccount struct {
	Username     string
	PasswordHash string
}
