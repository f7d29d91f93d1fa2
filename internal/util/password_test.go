package util

import "testing"

func TestDeriveAndVerifySecret(t *testing.T) {
	hash, salt, err := DeriveSecret("s3cret-pass")
	if err != nil {
		t.Fatalf("DeriveSecret returned error: %v", err)
	}
	if len(hash) == 0 || len(salt) == 0 {
		t.Fatalf("expected hash and salt to be populated")
	}
	if !VerifySecret("s3cret-pass", salt, hash) {
		t.Fatalf("expected verification to succeed")
	}
	if VerifySecret("wrong-pass", salt, hash) {
		t.Fatalf("expected verification to fail for wrong secret")
	}
}

func TestHashSecretDeterministic(t *testing.T) {
	salt := []byte("0123456789abcdef")
	first, err := HashSecret("482913", salt)
	if err != nil {
		t.Fatalf("HashSecret returned error: %v", err)
	}
	second, err := HashSecret("482913", salt)
	if err != nil {
		t.Fatalf("HashSecret returned error: %v", err)
	}
	if string(first) != string(second) {
		t.Fatalf("expected identical digests for identical input and salt")
	}
}

func TestHashSecretEmptyInput(t *testing.T) {
	if _, err := HashSecret("", []byte{1, 2, 3}); err == nil {
		t.Fatalf("expected error when secret empty")
	}
	if _, err := HashSecret("secret", nil); err == nil {
		t.Fatalf("expected error when salt empty")
	}
}

func TestValidatePassword(t *testing.T) {
	cases := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{name: "meets policy", password: "NewPass1!", wantErr: false},
		{name: "minimum length boundary", password: "Aa1!Aa1!", wantErr: false},
		{name: "too short", password: "Aa1!", wantErr: true},
		{name: "no uppercase", password: "newpass1!", wantErr: true},
		{name: "no digit", password: "NewPassword!", wantErr: true},
		{name: "no special", password: "NewPassword1", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidatePassword(tc.password)
			if tc.wantErr && err == nil {
				t.Fatalf("expected policy violation for %q", tc.password)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error for %q: %v", tc.password, err)
			}
		})
	}
}
