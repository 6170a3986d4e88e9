package types

import (
	"time"
)

// ChainID is one of the fixed network tags the simulator knows about,
// used as a lookup key everywhere (ledger, records, reference tables)
type ChainID string

const (
	ChainSolana   ChainID = "solana"
	ChainEthereum ChainID = "ethereum"
	ChainArbitrum ChainID = "arbitrum"
	ChainPolygon  ChainID = "polygon"
)

// Network is display data for a chain, served to the presentation layer as-is
type Network struct {
	ID     ChainID `json:"id" yaml:"id"`
	Name   string  `json:"name" yaml:"name"`
	Icon   string  `json:"icon" yaml:"icon"`
	Color  string  `json:"color" yaml:"color"`
	Accent string  `json:"accent" yaml:"accent"`
}

// Token is immutable once defined and referenced by value in balances and transactions
type Token struct {
	ID       string    `json:"id" yaml:"id"`
	Symbol   string    `json:"symbol" yaml:"symbol"`
	Name     string    `json:"name" yaml:"name"`
	Decimals int32     `json:"decimals" yaml:"decimals"`
	LogoURI  string    `json:"logoURI" yaml:"logo_uri"`
	Chains   []ChainID `json:"chains" yaml:"chains"`
}

// SupportsChain reports whether the token is transferable on chain
func (t Token) SupportsChain(chain ChainID) bool {
	for _, c := range t.Chains {
		if c == chain {
			return true
		}
	}
	return false
}

// BalanceEntry is keyed uniquely by (token, chain), balance is a decimal string
// formatted to the token precision
type BalanceEntry struct {
	Token   Token   `json:"token"`
	Chain   ChainID `json:"chain"`
	Balance string  `json:"balance"`
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusFailed    Status = "failed"
)

// Terminal statuses never change again
func (s Status) Terminal() bool {
	return s == StatusConfirmed || s == StatusFailed
}

// Operation is the part shared by messages and transactions
type Operation struct {
	ID          string     `json:"id"`
	FromChain   ChainID    `json:"fromChain"`
	ToChain     ChainID    `json:"toChain"`
	Status      Status     `json:"status"`
	Timestamp   time.Time  `json:"timestamp"`
	TxHash      string     `json:"txHash,omitempty"`      // assigned at source confirmation
	ConfirmedAt *time.Time `json:"confirmedAt,omitempty"` // stamped at settlement
	Error       string     `json:"error,omitempty"`       // failure reason, empty unless failed
}

// Message is an opaque cross-chain message, it never touches balances
type Message struct {
	Operation
	Message string `json:"message"`
}

func (m Message) Header() Operation {
	return m.Operation
}

func (m *Message) SetHeader(op Operation) {
	m.Operation = op
}

// Transaction is a value-bearing token transfer
type Transaction struct {
	Operation
	Token  Token  `json:"token"`
	Amount string `json:"amount"`
}

func (t Transaction) Header() Operation {
	return t.Operation
}

func (t *Transaction) SetHeader(op Operation) {
	t.Operation = op
}

type EventType string

const (
	EventCreated         EventType = "created"
	EventSourceConfirmed EventType = "source_confirmed"
	EventConfirmed       EventType = "confirmed"
	EventFailed          EventType = "failed"
	EventBalance         EventType = "balance"
)

// Event is emitted after every committed state change,
// exactly one of Message, Transaction or Balance is set
type Event struct {
	Type        EventType     `json:"type"`
	At          time.Time     `json:"at"`
	Message     *Message      `json:"message,omitempty"`
	Transaction *Transaction  `json:"transaction,omitempty"`
	Balance     *BalanceEntry `json:"balance,omitempty"`
}
