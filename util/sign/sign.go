// Command sign signs journal auth challenges with an Ed25519 private key.
//
//	sign -generate              write privkey.pem and print the public key for ED25519_PUBKEY
//	sign -server http://host    fetch the challenge, sign it and verify against the server
//	sign                        sign challenges typed on stdin
package main

import (
	"bufio"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/debemdeboas/the-journal/internal/config"
	"github.com/debemdeboas/the-journal/internal/routes"
)

var (
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true)
	outputStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

func loadPrivateKey(filename string) (ed25519.PrivateKey, error) {
	privKeyBytes, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	block, _ := pem.Decode(privKeyBytes)
	if block == nil {
		return nil, fmt.Errorf("failed to decode PEM block")
	}
	privKey, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	edPriv, ok := privKey.(ed25519.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("not an Ed25519 private key")
	}
	return edPriv, nil
}

// generateKey writes a new PKCS8 private key to filename and returns the
// matching public key as PEM. An existing file is never overwritten.
func generateKey(filename string) (string, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return "", err
	}

	privDER, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return "", err
	}
	pubDER, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return "", err
	}

	f, err := os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := pem.Encode(f, &pem.Block{Type: "PRIVATE KEY", Bytes: privDER}); err != nil {
		return "", err
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})), nil
}

// signChallenge signs a base64 challenge and returns the base64 signature.
func signChallenge(priv ed25519.PrivateKey, challengeB64 string) (string, error) {
	challenge, err := base64.StdEncoding.DecodeString(strings.TrimSpace(challengeB64))
	if err != nil {
		return "", errors.New("invalid base64")
	}
	return base64.StdEncoding.EncodeToString(ed25519.Sign(priv, challenge)), nil
}

type challengeResponse struct {
	Challenge string `json:"challenge"`
	Header    string `json:"header"`
}

// login signs the server's current challenge and verifies it. It returns the
// signature, which is also the value of the auth cookie.
func login(ctx context.Context, client *http.Client, server string, priv ed25519.PrivateKey) (string, error) {
	server = strings.TrimRight(server, "/")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server+routes.AuthLogin, nil)
	if err != nil {
		return "", err
	}
	res, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("login: %s", res.Status)
	}

	var challenge challengeResponse
	if err := json.NewDecoder(res.Body).Decode(&challenge); err != nil {
		return "", fmt.Errorf("login: %w", err)
	}

	signature, err := signChallenge(priv, challenge.Challenge)
	if err != nil {
		return "", err
	}

	header := challenge.Header
	if header == "" {
		header = "Authorization"
	}

	req, err = http.NewRequestWithContext(ctx, http.MethodPost, server+routes.AuthVerify, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set(header, signature)

	verified, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer verified.Body.Close()
	if verified.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(verified.Body, 512))
		return "", fmt.Errorf("verify: %s: %s", verified.Status, strings.TrimSpace(string(body)))
	}
	return signature, nil
}

func interactive(priv ed25519.PrivateKey, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, "Enter challenges one by one. Type 'quit' to exit.")

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, promptStyle.Render("Enter challenge (base64): "))
		if !scanner.Scan() {
			break
		}

		challenge := strings.TrimSpace(scanner.Text())
		if challenge == "" {
			continue
		}
		if challenge == "quit" {
			break
		}

		signature, err := signChallenge(priv, challenge)
		if err != nil {
			fmt.Fprintln(out, errorStyle.Render("Error: "+err.Error()))
			continue
		}
		fmt.Fprintln(out, outputStyle.Render("Signature: "+signature))
	}
	return scanner.Err()
}

func main() {
	keyPath := flag.String("key", "privkey.pem", "PKCS8 PEM private key")
	generate := flag.Bool("generate", false, "generate a new key pair at -key")
	server := flag.String("server", "", "journal base URL to sign in to")
	flag.Parse()

	if *generate {
		pub, err := generateKey(*keyPath)
		if err != nil {
			fmt.Println(errorStyle.Render("Error generating key: " + err.Error()))
			os.Exit(1)
		}
		fmt.Println(outputStyle.Render("Private key written to " + *keyPath))
		fmt.Println("Set this as ED25519_PUBKEY on the server:")
		fmt.Print(pub)
		return
	}

	privKey, err := loadPrivateKey(*keyPath)
	if err != nil {
		fmt.Println(errorStyle.Render("Error loading private key: " + err.Error()))
		os.Exit(1)
	}

	if *server != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		signature, err := login(ctx, http.DefaultClient, *server, privKey)
		if err != nil {
			fmt.Println(errorStyle.Render("Sign in failed: " + err.Error()))
			os.Exit(1)
		}
		fmt.Println(outputStyle.Render("Signed in. Cookie " + config.CookieAuthToken + "=" + signature))
		return
	}

	if err := interactive(privKey, os.Stdin, os.Stdout); err != nil {
		fmt.Println("Error reading input:", err)
	}
}
