// Package history persists previously used senders, recipients and footer
// blocks so repeat invoices can be filled from earlier ones, and hands out
// sequential invoice numbers from a counter file.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rezonia/facturx/internal/model"
)

// SenderEntry is one remembered sender. NameAddress is the name plus the
// address lines joined with newlines; it doubles as the dedupe key.
type SenderEntry struct {
	NameAddress string `json:"name_address"`
	TaxID       string `json:"tax_id"`
}

// RecipientEntry is one remembered recipient, keyed like SenderEntry.
type RecipientEntry struct {
	NameAddress string `json:"name_address"`
	CustomerID  string `json:"customer_id"`
}

// FooterEntry is one remembered footer configuration including the bank
// details shown alongside it.
type FooterEntry struct {
	Col1     string `json:"col1"`
	Col2     string `json:"col2"`
	Col3     string `json:"col3"`
	BankName string `json:"bank_name"`
	IBAN     string `json:"iban"`
	BIC      string `json:"bic"`
}

// History is the full persisted state.
type History struct {
	Senders    []SenderEntry    `json:"senders"`
	Recipients []RecipientEntry `json:"recipients"`
	Footers    []FooterEntry    `json:"footers"`
}

// Store reads and writes the history JSON file and the invoice counter next
// to it. All methods are safe for concurrent use within one process.
type Store struct {
	path        string
	counterPath string
	mu          sync.Mutex

	// now is swappable for tests; invoice IDs carry the issue year.
	now func() time.Time
}

// NewStore creates a store backed by the given history file. The counter
// lives in a dotfile in the same directory.
func NewStore(path string) *Store {
	return &Store{
		path:        path,
		counterPath: filepath.Join(filepath.Dir(path), ".invoice_counter"),
		now:         time.Now,
	}
}

// Load returns the persisted history. A missing file yields an empty
// history, not an error.
func (s *Store) Load() (*History, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() (*History, error) {
	h := &History{
		Senders:    []SenderEntry{},
		Recipients: []RecipientEntry{},
		Footers:    []FooterEntry{},
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return h, nil
	}
	if err != nil {
		return nil, fmt.Errorf("history: read %s: %w", s.path, err)
	}
	if err := json.Unmarshal(data, h); err != nil {
		return nil, fmt.Errorf("history: parse %s: %w", s.path, err)
	}
	return h, nil
}

func (s *Store) save(h *History) error {
	data, err := json.MarshalIndent(h, "", "    ")
	if err != nil {
		return fmt.Errorf("history: encode: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("history: write %s: %w", s.path, err)
	}
	return nil
}

// Record adds the invoice's sender, recipient and footer to the history,
// skipping entries already present. Blank parties and footers are ignored.
func (s *Store) Record(inv *model.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, err := s.load()
	if err != nil {
		return err
	}

	sender := SenderEntry{
		NameAddress: nameAddress(inv.Seller),
		TaxID:       inv.Seller.TaxID,
	}
	if strings.TrimSpace(sender.NameAddress) != "" && !hasSender(h.Senders, sender.NameAddress) {
		h.Senders = append(h.Senders, sender)
	}

	recipient := RecipientEntry{
		NameAddress: nameAddress(inv.Buyer),
		CustomerID:  inv.Buyer.CustomerID,
	}
	if strings.TrimSpace(recipient.NameAddress) != "" && !hasRecipient(h.Recipients, recipient.NameAddress) {
		h.Recipients = append(h.Recipients, recipient)
	}

	footer := FooterEntry{
		Col1:     inv.Footer.Col1,
		Col2:     inv.Footer.Col2,
		Col3:     inv.Footer.Col3,
		BankName: inv.Footer.BankName,
		IBAN:     inv.Payment.IBAN,
		BIC:      inv.Payment.BIC,
	}
	if footerNonEmpty(footer) && !hasFooter(h.Footers, footer) {
		h.Footers = append(h.Footers, footer)
	}

	return s.save(h)
}

// NextID returns the next invoice number without consuming it. The format
// is INV-<year>-NNN with a zero-padded sequence.
func (s *Store) NextID() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count, err := s.readCounter()
	if err != nil {
		return "", err
	}
	return s.formatID(count + 1), nil
}

// ConsumeID returns the next invoice number and advances the counter.
func (s *Store) ConsumeID() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count, err := s.readCounter()
	if err != nil {
		return "", err
	}
	count++
	if err := os.WriteFile(s.counterPath, []byte(strconv.Itoa(count)), 0o644); err != nil {
		return "", fmt.Errorf("history: write counter: %w", err)
	}
	return s.formatID(count), nil
}

func (s *Store) formatID(count int) string {
	return fmt.Sprintf("INV-%d-%03d", s.now().Year(), count)
}

// readCounter tolerates a missing or corrupt counter file and restarts the
// sequence at zero, matching a fresh install.
func (s *Store) readCounter() (int, error) {
	data, err := os.ReadFile(s.counterPath)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("history: read counter: %w", err)
	}
	count, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, nil
	}
	return count, nil
}

func nameAddress(p model.Party) string {
	parts := append([]string{p.Name}, p.AddressLines...)
	return strings.Join(parts, "\n")
}

func hasSender(entries []SenderEntry, key string) bool {
	for _, e := range entries {
		if e.NameAddress == key {
			return true
		}
	}
	return false
}

func hasRecipient(entries []RecipientEntry, key string) bool {
	for _, e := range entries {
		if e.NameAddress == key {
			return true
		}
	}
	return false
}

func hasFooter(entries []FooterEntry, f FooterEntry) bool {
	for _, e := range entries {
		if e.Col1 == f.Col1 && e.Col2 == f.Col2 && e.Col3 == f.Col3 {
			return true
		}
	}
	return false
}

func footerNonEmpty(f FooterEntry) bool {
	return strings.TrimSpace(f.Col1) != "" ||
		strings.TrimSpace(f.Col2) != "" ||
		strings.TrimSpace(f.Col3) != ""
}
