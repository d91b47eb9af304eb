package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/aussiebroadwan/trivia/internal/credentials/domain"
	"github.com/aussiebroadwan/trivia/internal/credentials/mail"
	"github.com/aussiebroadwan/trivia/internal/credentials/store/drivers/sqlite"
	"github.com/aussiebroadwan/trivia/pkg/cryptox"
	"github.com/aussiebroadwan/trivia/pkg/mailx"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testBaseURL = "https://trivia.x.com/confirmation"

// outbox records sent messages and can be told to fail.
type outbox struct {
	mu   sync.Mutex
	msgs []mailx.Message
	fail error
}

func (o *outbox) Send(_ context.Context, msg mailx.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.fail != nil {
		return o.fail
	}
	o.msgs = append(o.msgs, msg)
	return nil
}

func (o *outbox) sent() []mailx.Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]mailx.Message(nil), o.msgs...)
}

type testEnv struct {
	store  *sqlite.Store
	vault  *PasswordVault
	tokens *TokenStore
	conf   *ConfirmationService
	auth   *AuthService
	outbox *outbox
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	renderer, err := mail.NewRenderer("trivia@x.com", "")
	require.NoError(t, err)

	vault := &PasswordVault{Store: st, Hasher: cryptox.NewPasswordHasher(bcrypt.MinCost, 4)}
	tokens := &TokenStore{Store: st, Kind: domain.TokenKindEmailConfirmation}
	out := &outbox{}
	conf := &ConfirmationService{
		Vault:    vault,
		Tokens:   tokens,
		Mailer:   out,
		Renderer: renderer,
		BaseURL:  testBaseURL,
		HomeURL:  "https://trivia.x.com",
	}

	return &testEnv{
		store:  st,
		vault:  vault,
		tokens: tokens,
		conf:   conf,
		auth:   &AuthService{Store: st, Vault: vault, Confirmations: conf},
		outbox: out,
	}
}

func tokenFromURL(t *testing.T, link string) string {
	t.Helper()
	require.True(t, strings.HasPrefix(link, testBaseURL+"/"), "unexpected link %q", link)
	return strings.TrimPrefix(link, testBaseURL+"/")
}
