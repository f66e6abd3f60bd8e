package crypto

import "testing"

func TestSignVerifyRoundTrip(t *testing.T) {
	pub, sec, err := GenerateKeyPair()
	if err != nil {
		t.Fatal(err)
	}
	msg := []byte("transfer 30 to bob")
	sig := Sign(sec, msg)
	if !Verify(pub, msg, sig) {
		t.Fatal("signature should verify under the signing key's public counterpart")
	}
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	_, sec, err := GenerateKeyPair()
	if err != nil {
		t.Fatal(err)
	}
	otherPub, _, err := GenerateKeyPair()
	if err != nil {
		t.Fatal(err)
	}
	msg := []byte("transfer 30 to bob")
	sig := Sign(sec, msg)
	if Verify(otherPub, msg, sig) {
		t.Fatal("signature should not verify under an unrelated public key")
	}
}

func TestRLPHashDeterministic(t *testing.T) {
	type payload struct {
		A uint64
		B []byte
	}
	p := payload{A: 7, B: []byte("x")}
	h1, err := RLPHash(p)
	if err != nil {
		t.Fatal(err)
	}
	h2, err := RLPHash(p)
	if err != nil {
		t.Fatal(err)
	}
	if h1 != h2 {
		t.Fatal("RLPHash should be deterministic for identical input")
	}
}

func TestSum256Deterministic(t *testing.T) {
	if Sum256([]byte("a")) != Sum256([]byte("a")) {
		t.Fatal("Sum256 should be deterministic")
	}
	if Sum256([]byte("a")) == Sum256([]byte("b")) {
		t.Fatal("Sum256 should differ for differing input")
	}
}
