package sim

import (
	"crypto/rsa"
	"crypto/x509"
	"errors"
	"fmt"
)

// RSAKeyBits is the key size the SDK accepts.
const RSAKeyBits = 2048

var errKeyMismatch = errors.New("public key does not match private key")

// verifyKeyPair checks that priv and pub are a DER encoded RSA-2048 pair.
// The private key may be PKCS#1 or PKCS#8, the public key PKIX or PKCS#1.
func verifyKeyPair(priv, pub []byte) error {
	key, err := parsePrivateKey(priv)
	if err != nil {
		return err
	}
	if n := key.N.BitLen(); n != RSAKeyBits {
		return fmt.Errorf("private key is %d bits, want %d", n, RSAKeyBits)
	}
	pk, err := parsePublicKey(pub)
	if err != nil {
		return err
	}
	if !key.PublicKey.Equal(pk) {
		return errKeyMismatch
	}
	return nil
}

func parsePrivateKey(der []byte) (*rsa.PrivateKey, error) {
	if key, err := x509.ParsePKCS1PrivateKey(der); err == nil {
		return key, nil
	}
	k, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	key, ok := k.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("private key is %T, want RSA", k)
	}
	return key, nil
}

func parsePublicKey(der []byte) (*rsa.PublicKey, error) {
	if k, err := x509.ParsePKIXPublicKey(der); err == nil {
		key, ok := k.(*rsa.PublicKey)
		if !ok {
			return nil, fmt.Errorf("public key is %T, want RSA", k)
		}
		return key, nil
	}
	key, err := x509.ParsePKCS1PublicKey(der)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}
	return key, nil
}
