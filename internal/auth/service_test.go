package auth

import (
	"context"
	"testing"

	"github.com/angelmondragon/storefront-backend/internal/users"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/security"
)

type stubUserRepo struct {
	byEmail   *users.User
	findErr   error
	inserted  *users.User
	insertID  string
	insertErr error
}

func (s *stubUserRepo) FindByEmail(_ context.Context, _ string) (*users.User, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.byEmail, nil
}

func (s *stubUserRepo) Insert(_ context.Context, user *users.User) (string, error) {
	if s.insertErr != nil {
		return "", s.insertErr
	}
	s.inserted = user
	user.ID = s.insertID
	return s.insertID, nil
}

func validSignup() SignupInput {
	return SignupInput{
		Email:        "jane@example.com",
		ConfirmEmail: "jane@example.com",
		Password:     "secret1",
		Fullname:     "Jane Doe",
		Street:       "1 Main St",
		Postal:       "12345",
		City:         "Springfield",
	}
}

func TestSignupStoresHashedPassword(t *testing.T) {
	t.Parallel()

	repo := &stubUserRepo{findErr: pkgerrors.New(pkgerrors.CodeNotFound, "user not found"), insertID: "u1"}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	user, err := svc.Signup(context.Background(), validSignup())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.inserted == nil {
		t.Fatal("expected insert")
	}
	if repo.inserted.PasswordHash == "secret1" || repo.inserted.PasswordHash == "" {
		t.Fatal("plaintext password must never be stored")
	}
	match, err := security.VerifyPassword("secret1", repo.inserted.PasswordHash)
	if err != nil || !match {
		t.Fatalf("stored hash does not verify: match=%v err=%v", match, err)
	}
	if user.ID != "u1" {
		t.Fatalf("expected assigned id, got %q", user.ID)
	}
}

func TestSignupValidation(t *testing.T) {
	t.Parallel()

	cases := map[string]func(*SignupInput){
		"email without at sign": func(in *SignupInput) { in.Email = "janeexample.com"; in.ConfirmEmail = in.Email },
		"mismatched confirm":    func(in *SignupInput) { in.ConfirmEmail = "other@example.com" },
		"short password":        func(in *SignupInput) { in.Password = "five5" },
		"postal too short":      func(in *SignupInput) { in.Postal = "1234" },
		"postal too long":       func(in *SignupInput) { in.Postal = "12345678" },
		"blank name":            func(in *SignupInput) { in.Fullname = "  " },
		"blank street":          func(in *SignupInput) { in.Street = "" },
		"blank city":            func(in *SignupInput) { in.City = "" },
	}

	for name, mutate := range cases {
		mutate := mutate
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			repo := &stubUserRepo{findErr: pkgerrors.New(pkgerrors.CodeNotFound, "user not found")}
			svc, _ := NewService(repo)

			input := validSignup()
			mutate(&input)

			_, err := svc.Signup(context.Background(), input)
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
			if repo.inserted != nil {
				t.Fatal("invalid input must not be inserted")
			}
		})
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	t.Parallel()

	repo := &stubUserRepo{byEmail: &users.User{ID: "u1", Email: "jane@example.com"}}
	svc, _ := NewService(repo)

	_, err := svc.Signup(context.Background(), validSignup())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestLoginUnknownEmailAndWrongPasswordLookAlike(t *testing.T) {
	t.Parallel()

	hash, err := security.HashPassword("correct-password")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	missingRepo := &stubUserRepo{findErr: pkgerrors.New(pkgerrors.CodeNotFound, "user not found")}
	wrongRepo := &stubUserRepo{byEmail: &users.User{ID: "u1", Email: "jane@example.com", PasswordHash: hash}}

	svcMissing, _ := NewService(missingRepo)
	svcWrong, _ := NewService(wrongRepo)

	_, errMissing := svcMissing.Login(context.Background(), LoginInput{Email: "jane@example.com", Password: "nope"})
	_, errWrong := svcWrong.Login(context.Background(), LoginInput{Email: "jane@example.com", Password: "nope"})

	typedMissing := pkgerrors.As(errMissing)
	typedWrong := pkgerrors.As(errWrong)
	if typedMissing == nil || typedWrong == nil {
		t.Fatalf("expected coded errors, got %v / %v", errMissing, errWrong)
	}
	if typedMissing.Code() != pkgerrors.CodeUnauthorized || typedWrong.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized for both, got %v / %v", typedMissing.Code(), typedWrong.Code())
	}
	if typedMissing.Message() != typedWrong.Message() {
		t.Fatal("failure messages must not reveal which check failed")
	}
}

func TestLoginSuccess(t *testing.T) {
	t.Parallel()

	hash, err := security.HashPassword("correct-password")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	repo := &stubUserRepo{byEmail: &users.User{ID: "u1", Email: "jane@example.com", PasswordHash: hash, IsAdmin: true}}
	svc, _ := NewService(repo)

	user, err := svc.Login(context.Background(), LoginInput{Email: "jane@example.com", Password: "correct-password"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != "u1" || !user.IsAdmin {
		t.Fatalf("unexpected user: %+v", user)
	}
}
