// Package gossip broadcasts ValidationResults between validator
// instances over a libp2p pubsub topic, so independently-run
// validators converge on the same consensus view without a central
// coordinator.
//
// This is an external collaborator per spec.md §1: the aggregation
// core never imports this package, and this package only ever
// constructs types.ValidationResult values to hand off, never
// inspects miner responses itself.
package gossip

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/libp2p/go-libp2p"
	pubsub "github.com/libp2p/go-libp2p-pubsub"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/multiformats/go-multiaddr"

	"github.com/veritas-net/validator-core/internal/types"
)

const resultsTopic = "veritas/validation-results/v1"

// Envelope is the wire form of one gossiped consensus result.
type Envelope struct {
	Statement string                 `json:"statement"`
	Result    types.ValidationResult `json:"result"`
}

// Node is one validator's libp2p presence: a host plus a pubsub
// subscription to the shared results topic.
type Node struct {
	host  host.Host
	ps    *pubsub.PubSub
	topic *pubsub.Topic
	sub   *pubsub.Subscription
}

// NewNode starts a libp2p host listening on listenAddr and joins the
// shared validation-results topic.
func NewNode(ctx context.Context, listenAddr string) (*Node, error) {
	h, err := libp2p.New(libp2p.ListenAddrStrings(listenAddr))
	if err != nil {
		return nil, fmt.Errorf("gossip: create host: %w", err)
	}

	ps, err := pubsub.NewGossipSub(ctx, h)
	if err != nil {
		h.Close()
		return nil, fmt.Errorf("gossip: create pubsub: %w", err)
	}

	topic, err := ps.Join(resultsTopic)
	if err != nil {
		h.Close()
		return nil, fmt.Errorf("gossip: join topic: %w", err)
	}

	sub, err := topic.Subscribe()
	if err != nil {
		topic.Close()
		h.Close()
		return nil, fmt.Errorf("gossip: subscribe: %w", err)
	}

	return &Node{host: h, ps: ps, topic: topic, sub: sub}, nil
}

// Connect dials a known peer so gossip can flow before a full DHT
// discovery layer is wired up.
func (n *Node) Connect(ctx context.Context, addr multiaddr.Multiaddr) error {
	info, err := peer.AddrInfoFromP2pAddr(addr)
	if err != nil {
		return fmt.Errorf("gossip: parse peer address: %w", err)
	}
	return n.host.Connect(ctx, *info)
}

// Publish broadcasts one validator's consensus result for statement.
func (n *Node) Publish(ctx context.Context, statement types.Statement, result types.ValidationResult) error {
	envelope := Envelope{Statement: string(statement), Result: result}
	payload, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("gossip: marshal envelope: %w", err)
	}
	return n.topic.Publish(ctx, payload)
}

// Next blocks until the next gossiped envelope arrives (from any peer,
// including messages this node itself published).
func (n *Node) Next(ctx context.Context) (Envelope, error) {
	msg, err := n.sub.Next(ctx)
	if err != nil {
		return Envelope{}, fmt.Errorf("gossip: receive: %w", err)
	}
	var envelope Envelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		return Envelope{}, fmt.Errorf("gossip: unmarshal envelope: %w", err)
	}
	return envelope, nil
}

// Close shuts down the subscription, topic, and host.
func (n *Node) Close() error {
	n.sub.Cancel()
	if err := n.topic.Close(); err != nil {
		return err
	}
	return n.host.Close()
}
