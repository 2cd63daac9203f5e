// Package security holds the node's signing identity: every node has an
// Ed25519 keypair, and every proof submission is signed for authenticity
// (spec §3, §4.7).
package security

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tutu-network/proverd/internal/domain"
)

// Keypair holds the node's Ed25519 signing identity. The signing key is
// shared read-only by submitter goroutines (spec §3 Ownership); it is
// never cloned across goroutines in mutable form.
type Keypair struct {
	Public  ed25519.PublicKey
	Private ed25519.PrivateKey
}

// GenerateKeypair creates a new Ed25519 keypair.
func GenerateKeypair() (*Keypair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate ed25519 keypair: %w", err)
	}
	return &Keypair{Public: pub, Private: priv}, nil
}

// LoadOrCreateKeypair loads an existing keypair from proverHome/keys, or
// generates and persists a new one on first run.
func LoadOrCreateKeypair(proverHome string) (*Keypair, error) {
	keyDir := filepath.Join(proverHome, "keys")
	pubPath := filepath.Join(keyDir, "node.pub")
	privPath := filepath.Join(keyDir, "node.key")

	pubBytes, pubErr := os.ReadFile(pubPath)
	privBytes, privErr := os.ReadFile(privPath)

	if pubErr == nil && privErr == nil {
		pub, err := hex.DecodeString(string(pubBytes))
		if err != nil {
			return nil, fmt.Errorf("decode public key: %w", err)
		}
		priv, err := hex.DecodeString(string(privBytes))
		if err != nil {
			return nil, fmt.Errorf("decode private key: %w", err)
		}
		return &Keypair{
			Public:  ed25519.PublicKey(pub),
			Private: ed25519.PrivateKey(priv),
		}, nil
	}

	kp, err := GenerateKeypair()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(keyDir, 0700); err != nil {
		return nil, fmt.Errorf("create key dir: %w", err)
	}
	if err := os.WriteFile(pubPath, []byte(hex.EncodeToString(kp.Public)), 0644); err != nil {
		return nil, fmt.Errorf("write public key: %w", err)
	}
	if err := os.WriteFile(privPath, []byte(hex.EncodeToString(kp.Private)), 0600); err != nil {
		return nil, fmt.Errorf("write private key: %w", err)
	}

	return kp, nil
}

// PublicKeyHex returns the public key as a hex string, used as the default
// node id when the embedder has not assigned one explicitly.
func (kp *Keypair) PublicKeyHex() string {
	return hex.EncodeToString(kp.Public)
}

// Sign signs an arbitrary message with the node's private key.
func (kp *Keypair) Sign(message []byte) []byte {
	return ed25519.Sign(kp.Private, message)
}

// SignSubmission signs the exact submission payload spec §4.7 mandates:
// "0 | {task_id} | {proof_hash}" (signature version 0).
func (kp *Keypair) SignSubmission(taskID, proofHash string) []byte {
	return kp.Sign(domain.SignaturePayload(taskID, proofHash))
}

// Verify checks a signature against a public key.
func Verify(message, signature []byte, publicKey ed25519.PublicKey) bool {
	return ed25519.Verify(publicKey, message, signature)
}

// NodeIdentity binds a node's signing keypair to the node_id it presents
// to the orchestrator and to the verifying key the fetcher advertises
// (spec §4.4, §4.7): fetcher, submitter, and runtime all thread this one
// value instead of passing a bare Keypair alongside a separately-resolved
// id string.
type NodeIdentity struct {
	*Keypair
	NodeID string
}

// NewNodeIdentity pairs keys with nodeID, defaulting nodeID to the
// keypair's own public key hex when the embedder hasn't assigned one
// (spec §4.2: "node_id defaults to the node's public key").
func NewNodeIdentity(keys *Keypair, nodeID string) *NodeIdentity {
	if nodeID == "" {
		nodeID = keys.PublicKeyHex()
	}
	return &NodeIdentity{Keypair: keys, NodeID: nodeID}
}
