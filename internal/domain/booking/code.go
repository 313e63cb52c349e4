package booking

import (
	"crypto/rand"
	"encoding/hex"
)

const confirmationAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// NewConfirmationCode gera um código de 6 caracteres alfanuméricos,
// sem 0/O/1/I para evitar confusão ao ditar por telefone.
func NewConfirmationCode() (string, error) {
	return randomFromAlphabet(6)
}

// NewShortCode gera o código curto do link de autogestão (SMS).
func NewShortCode() (string, error) {
	return randomFromAlphabet(8)
}

// NewAccessTokenValue gera o token opaco do link de gestão.
func NewAccessTokenValue() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func randomFromAlphabet(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	out := make([]byte, n)
	for i, v := range b {
		out[i] = confirmationAlphabet[int(v)%len(confirmationAlphabet)]
	}
	return string(out), nil
}
