package auth

import "testing"

func TestPasswordHashVerify(t *testing.T) {
	pepper := "pepper"
	pass := "S3cure#Pass"
	ph, err := HashPassword(pass, pepper)
	if err != nil {
		t.Fatalf("hash err: %v", err)
	}
	ok, err := VerifyPassword(pass, pepper, ph)
	if err != nil || !ok {
		t.Fatalf("verify failed")
	}
	ok, _ = VerifyPassword("wrong", pepper, ph)
	if ok {
		t.Fatalf("expected failure for wrong password")
	}
	ok, _ = VerifyPassword(pass, "other-pepper", ph)
	if ok {
		t.Fatalf("expected failure for wrong pepper")
	}
}

func TestPasswordHashRandomized(t *testing.T) {
	a, err := HashPassword("same-input", "pepper")
	if err != nil {
		t.Fatalf("hash err: %v", err)
	}
	b, err := HashPassword("same-input", "pepper")
	if err != nil {
		t.Fatalf("hash err: %v", err)
	}
	if a.Hash == b.Hash {
		t.Fatalf("two hashes of the same password must not match")
	}
	if a.Salt == b.Salt {
		t.Fatalf("salts must be random")
	}
}

func TestParsePasswordHash(t *testing.T) {
	if _, err := ParsePasswordHash("", "salt"); err == nil {
		t.Fatalf("expected error for empty hash")
	}
	if _, err := ParsePasswordHash("hash", ""); err == nil {
		t.Fatalf("expected error for empty salt")
	}
}
