package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/campusconnect/campus-qa-api/services/campus-service/internal/config"
	"github.com/campusconnect/campus-qa-api/services/campus-service/internal/model"
	"github.com/campusconnect/campus-qa-api/services/campus-service/internal/repository"
	"github.com/campusconnect/campus-qa-api/shared/provider"
)

func testLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

func testConfig() *config.Config {
	return &config.Config{
		InstitutionalEmailDomain: "@campus.edu",
		VerificationTokenTTL:     24 * time.Hour,
		VerificationRateLimit:    3,
		VerificationRateWindow:   time.Hour,
		AppVerificationURL:       "https://app.campus.edu/verify",
		Token: config.TokenConfig{
			Issuer:                "campus-qa-api",
			AccessTokenSecret:     "access-secret",
			AccessTokenExpiresIn:  15 * time.Minute,
			RefreshTokenSecret:    "refresh-secret",
			RefreshTokenExpiresIn: 720 * time.Hour,
		},
	}
}

// duplicateKeyError mimics the server error raised by a unique index collision.
func duplicateKeyError() error {
	return mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
}

// fakeTransactor serializes transactions with a mutex. It gives the same
// mutual exclusion guarantee the real implementation gets from server-side
// transactions, which is what the concurrency tests lean on.
type fakeTransactor struct {
	mu sync.Mutex
}

func (t *fakeTransactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fn(ctx)
}

// fakeAccountRepo is an in-memory AccountRepository.
type fakeAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]*model.Account
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: make(map[string]*model.Account)}
}

func (r *fakeAccountRepo) CreateAccount(_ context.Context, account *model.Account) (*model.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.accounts {
		if existing.PersonalEmail == account.PersonalEmail {
			return nil, duplicateKeyError()
		}
	}

	account.ID = bson.NewObjectID()
	account.CreatedAt = time.Now()
	copied := *account
	r.accounts[account.ID.Hex()] = &copied

	return account, nil
}

func (r *fakeAccountRepo) GetAccount(_ context.Context, id string) (*model.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}

	copied := *account
	return &copied, nil
}

func (r *fakeAccountRepo) GetAccountByEmail(_ context.Context, email string) (*model.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, account := range r.accounts {
		if account.PersonalEmail == email {
			copied := *account
			return &copied, nil
		}
	}

	return nil, mongo.ErrNoDocuments
}

func (r *fakeAccountRepo) UpdateAccount(
	_ context.Context,
	id string,
	params repository.UpdateAccountParams,
) (*model.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}

	if params.Role != nil {
		account.Role = *params.Role
	}
	if params.VerificationStatus != nil {
		account.VerificationStatus = *params.VerificationStatus
	}
	if params.VerificationMethod != nil {
		account.VerificationMethod = *params.VerificationMethod
	}
	if params.AccountStatus != nil {
		account.AccountStatus = *params.AccountStatus
	}
	if params.ProfileCompleted != nil {
		account.ProfileCompleted = *params.ProfileCompleted
	}
	if params.InstitutionalEmail != nil {
		account.InstitutionalEmail = params.InstitutionalEmail
	}
	if params.VerifiedAt != nil {
		account.VerifiedAt = params.VerifiedAt
	}
	if params.VerifiedBy != nil {
		account.VerifiedBy = params.VerifiedBy
	}
	if params.StudentProfile != nil {
		account.StudentProfile = params.StudentProfile
	}
	if params.AlumniProfile != nil {
		account.AlumniProfile = params.AlumniProfile
	}
	if params.FacultyProfile != nil {
		account.FacultyProfile = params.FacultyProfile
	}
	if params.RecruiterProfile != nil {
		account.RecruiterProfile = params.RecruiterProfile
	}

	copied := *account
	return &copied, nil
}

func (r *fakeAccountRepo) ListAlumni(
	_ context.Context,
	params repository.ListAlumniParams,
) ([]*model.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*model.Account
	for _, account := range r.accounts {
		if account.Role != model.RoleAlumni || account.VerificationStatus != model.VerificationVerified {
			continue
		}
		if params.Branch != nil &&
			(account.AlumniProfile == nil || account.AlumniProfile.Branch != *params.Branch) {
			continue
		}
		if params.GraduationYear != nil &&
			(account.AlumniProfile == nil || account.AlumniProfile.GraduationYear != *params.GraduationYear) {
			continue
		}

		copied := *account
		out = append(out, &copied)
	}

	return out, nil
}

// fakeIdentityRepo is an in-memory IdentityRepository.
type fakeIdentityRepo struct {
	mu         sync.Mutex
	identities map[string]*model.Identity
}

func newFakeIdentityRepo() *fakeIdentityRepo {
	return &fakeIdentityRepo{identities: make(map[string]*model.Identity)}
}

func identityKey(provider, providerID string) string {
	return provider + "/" + providerID
}

func (r *fakeIdentityRepo) CreateIdentity(_ context.Context, identity *model.Identity) (*model.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := identityKey(identity.Provider, identity.ProviderID)
	if _, ok := r.identities[key]; ok {
		return nil, duplicateKeyError()
	}

	identity.ID = bson.NewObjectID()
	copied := *identity
	r.identities[key] = &copied

	return identity, nil
}

func (r *fakeIdentityRepo) GetIdentityByProvider(_ context.Context, provider, providerID string) (*model.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	identity, ok := r.identities[identityKey(provider, providerID)]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}

	copied := *identity
	return &copied, nil
}

func (r *fakeIdentityRepo) UpdateLastLogin(_ context.Context, accountID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, identity := range r.identities {
		if identity.AccountID == accountID {
			identity.LastLoginAt = time.Now()
			return nil
		}
	}

	return mongo.ErrNoDocuments
}

// fakeSessionRepo is an in-memory SessionRepository.
type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*model.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*model.Session)}
}

func (r *fakeSessionRepo) CreateSession(_ context.Context, session *model.Session) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session.ID = bson.NewObjectID()
	copied := *session
	r.sessions[session.ID.Hex()] = &copied

	return session, nil
}

func (r *fakeSessionRepo) UpdateTokens(
	_ context.Context,
	id string,
	params repository.UpdateTokensParams,
) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}

	session.AccessToken = params.AccessToken
	session.RefreshToken = params.RefreshToken
	session.AccessTokenExpiresAt = params.AccessTokenExpiresAt
	session.RefreshTokenExpiresAt = params.RefreshTokenExpiresAt

	copied := *session
	return &copied, nil
}

// fakeTokenRepo is an in-memory VerificationTokenRepository.
type fakeTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]*model.VerificationToken
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: make(map[string]*model.VerificationToken)}
}

func (r *fakeTokenRepo) CreateToken(_ context.Context, token *model.VerificationToken) (*model.VerificationToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	token.ID = bson.NewObjectID()
	token.CreatedAt = time.Now()
	copied := *token
	r.tokens[token.Token] = &copied

	return token, nil
}

func (r *fakeTokenRepo) GetToken(_ context.Context, token string) (*model.VerificationToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.tokens[token]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}

	copied := *record
	return &copied, nil
}

func (r *fakeTokenRepo) MarkTokenAsUsed(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.tokens[token]
	if !ok || record.Used {
		return mongo.ErrNoDocuments
	}

	record.Used = true
	return nil
}

func (r *fakeTokenRepo) CountTokensSince(_ context.Context, accountID string, since time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var count int64
	for _, record := range r.tokens {
		if record.AccountID.Hex() == accountID && record.CreatedAt.After(since) {
			count++
		}
	}

	return count, nil
}

// setCreatedAt backdates a token, used by the rate-limit window tests.
func (r *fakeTokenRepo) setCreatedAt(token string, createdAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if record, ok := r.tokens[token]; ok {
		record.CreatedAt = createdAt
	}
}

// fakeRequestRepo is an in-memory VerificationRequestRepository.
type fakeRequestRepo struct {
	mu       sync.Mutex
	requests []*model.VerificationRequest
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{}
}

func (r *fakeRequestRepo) CreateRequest(
	_ context.Context,
	request *model.VerificationRequest,
) (*model.VerificationRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	request.ID = bson.NewObjectID()
	request.CreatedAt = time.Now()
	copied := *request
	r.requests = append(r.requests, &copied)

	return request, nil
}

func (r *fakeRequestRepo) GetActiveRequestByAccount(
	_ context.Context,
	accountID string,
) (*model.VerificationRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var latest *model.VerificationRequest
	for _, request := range r.requests {
		if request.AccountID.Hex() != accountID || request.Status == model.RequestSuperseded {
			continue
		}
		if latest == nil || request.CreatedAt.After(latest.CreatedAt) {
			latest = request
		}
	}

	if latest == nil {
		return nil, mongo.ErrNoDocuments
	}

	copied := *latest
	return &copied, nil
}

func (r *fakeRequestRepo) UpdateRequest(
	_ context.Context,
	id string,
	params repository.UpdateRequestParams,
) (*model.VerificationRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, request := range r.requests {
		if request.ID.Hex() != id {
			continue
		}

		if params.Status != nil {
			request.Status = *params.Status
		}
		if params.ReviewerID != nil {
			request.ReviewerID = params.ReviewerID
		}
		if params.ReviewedAt != nil {
			request.ReviewedAt = params.ReviewedAt
		}
		if params.RejectionReason != nil {
			request.RejectionReason = params.RejectionReason
		}

		copied := *request
		return &copied, nil
	}

	return nil, mongo.ErrNoDocuments
}

func (r *fakeRequestRepo) ListPendingRequests(
	_ context.Context,
	limit, offset uint64,
) ([]*model.VerificationRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*model.VerificationRequest
	for _, request := range r.requests {
		if request.Status == model.RequestPending {
			copied := *request
			out = append(out, &copied)
		}
	}

	return out, nil
}

// fakeQuestionRepo is an in-memory QuestionRepository.
type fakeQuestionRepo struct {
	mu        sync.Mutex
	questions map[string]*model.Question
}

func newFakeQuestionRepo() *fakeQuestionRepo {
	return &fakeQuestionRepo{questions: make(map[string]*model.Question)}
}

func (r *fakeQuestionRepo) CreateQuestion(_ context.Context, question *model.Question) (*model.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	question.ID = bson.NewObjectID()
	question.CreatedAt = time.Now()
	copied := *question
	r.questions[question.ID.Hex()] = &copied

	return question, nil
}

func (r *fakeQuestionRepo) GetQuestion(_ context.Context, id string) (*model.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	question, ok := r.questions[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}

	copied := *question
	return &copied, nil
}

func (r *fakeQuestionRepo) ListQuestions(
	_ context.Context,
	params repository.ListQuestionsParams,
) ([]*model.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*model.Question
	for _, question := range r.questions {
		if params.Status != nil && question.Status != *params.Status {
			continue
		}
		copied := *question
		out = append(out, &copied)
	}

	return out, nil
}

func (r *fakeQuestionRepo) ApplyAnswerCreated(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	question, ok := r.questions[id]
	if !ok {
		return mongo.ErrNoDocuments
	}

	question.AnswerCount++
	question.Status = model.QuestionAnswered
	return nil
}

// fakeAnswerRepo is an in-memory AnswerRepository.
type fakeAnswerRepo struct {
	mu      sync.Mutex
	answers map[string]*model.Answer
}

func newFakeAnswerRepo() *fakeAnswerRepo {
	return &fakeAnswerRepo{answers: make(map[string]*model.Answer)}
}

func (r *fakeAnswerRepo) CreateAnswer(_ context.Context, answer *model.Answer) (*model.Answer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	answer.ID = bson.NewObjectID()
	answer.CreatedAt = time.Now()
	copied := *answer
	r.answers[answer.ID.Hex()] = &copied

	return answer, nil
}

func (r *fakeAnswerRepo) GetAnswer(_ context.Context, id string) (*model.Answer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	answer, ok := r.answers[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}

	copied := *answer
	return &copied, nil
}

func (r *fakeAnswerRepo) ListAnswersByQuestion(_ context.Context, questionID string) ([]*model.Answer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*model.Answer
	for _, answer := range r.answers {
		if answer.QuestionID.Hex() == questionID {
			copied := *answer
			out = append(out, &copied)
		}
	}

	return out, nil
}

func (r *fakeAnswerRepo) IncrementLikeCount(_ context.Context, id string, delta int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	answer, ok := r.answers[id]
	if !ok {
		return mongo.ErrNoDocuments
	}

	answer.LikeCount += delta
	return nil
}

func (r *fakeAnswerRepo) SetAccepted(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	answer, ok := r.answers[id]
	if !ok {
		return mongo.ErrNoDocuments
	}

	answer.IsAccepted = true
	return nil
}

func (r *fakeAnswerRepo) CountByAuthor(_ context.Context, authorID string) (int64, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var total, accepted int64
	for _, answer := range r.answers {
		if answer.AuthorID.Hex() != authorID {
			continue
		}
		total++
		if answer.IsAccepted {
			accepted++
		}
	}

	return total, accepted, nil
}

// fakeLikeRepo is an in-memory LikeRepository with the unique index semantics.
type fakeLikeRepo struct {
	mu    sync.Mutex
	likes map[string]*model.Like
}

func newFakeLikeRepo() *fakeLikeRepo {
	return &fakeLikeRepo{likes: make(map[string]*model.Like)}
}

func likeKey(answerID, userID string) string {
	return answerID + "/" + userID
}

func (r *fakeLikeRepo) GetLike(_ context.Context, answerID, userID string) (*model.Like, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	like, ok := r.likes[likeKey(answerID, userID)]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}

	copied := *like
	return &copied, nil
}

func (r *fakeLikeRepo) CreateLike(_ context.Context, like *model.Like) (*model.Like, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := likeKey(like.AnswerID.Hex(), like.UserID.Hex())
	if _, ok := r.likes[key]; ok {
		return nil, duplicateKeyError()
	}

	like.ID = bson.NewObjectID()
	copied := *like
	r.likes[key] = &copied

	return like, nil
}

func (r *fakeLikeRepo) DeleteLike(_ context.Context, answerID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := likeKey(answerID, userID)
	if _, ok := r.likes[key]; !ok {
		return mongo.ErrNoDocuments
	}

	delete(r.likes, key)
	return nil
}

// fakeProcessedEventRepo is an in-memory ProcessedEventRepository.
type fakeProcessedEventRepo struct {
	mu   sync.Mutex
	keys map[string]bool
}

func newFakeProcessedEventRepo() *fakeProcessedEventRepo {
	return &fakeProcessedEventRepo{keys: make(map[string]bool)}
}

func (r *fakeProcessedEventRepo) MarkProcessed(_ context.Context, eventKey string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.keys[eventKey] {
		return duplicateKeyError()
	}

	r.keys[eventKey] = true
	return nil
}

// fakeAuditRepo is an in-memory AuditLogRepository.
type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []*model.AuditEntry
}

func newFakeAuditRepo() *fakeAuditRepo {
	return &fakeAuditRepo{}
}

func (r *fakeAuditRepo) AppendEntry(_ context.Context, entry *model.AuditEntry) (*model.AuditEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry.ID = bson.NewObjectID()
	entry.CreatedAt = time.Now()
	copied := *entry
	r.entries = append(r.entries, &copied)

	return entry, nil
}

func (r *fakeAuditRepo) ListEntriesByEntity(_ context.Context, entity, entityID string) ([]*model.AuditEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*model.AuditEntry
	for _, entry := range r.entries {
		if entry.Entity == entity && entry.EntityID == entityID {
			copied := *entry
			out = append(out, &copied)
		}
	}

	return out, nil
}

// fakeNotifier records outbound emails and can be told to fail.
type fakeNotifier struct {
	mu    sync.Mutex
	sent  [][]string
	fails bool
}

func (n *fakeNotifier) SendHTML(to []string, _, _, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.fails {
		return errors.New("smtp unavailable")
	}

	n.sent = append(n.sent, to)
	return nil
}

func (n *fakeNotifier) sentCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

// fakeProducer records published messages and can be told to fail.
type fakeProducer struct {
	mu       sync.Mutex
	messages [][]byte
	fails    bool
}

func (p *fakeProducer) PublishMessage(_, value []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.fails {
		return errors.New("broker unavailable")
	}

	p.messages = append(p.messages, value)
	return nil
}

func (p *fakeProducer) published() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.messages)
}

// fakeIdentityProvider resolves every token to a fixed identity.
type fakeIdentityProvider struct {
	identity *provider.Identity
	fails    bool
}

func (p *fakeIdentityProvider) ValidateIDToken(_ context.Context, _ string) (*provider.Identity, error) {
	if p.fails {
		return nil, errors.New("invalid id token")
	}

	return p.identity, nil
}

// seedAccount inserts an account directly into the fake repository.
func seedAccount(t *testing.T, repo *fakeAccountRepo, account *model.Account) *model.Account {
	t.Helper()

	if account.AccountStatus == "" {
		account.AccountStatus = model.AccountActive
	}
	if account.VerificationStatus == "" {
		account.VerificationStatus = model.VerificationUnverified
	}
	if account.VerificationMethod == "" {
		account.VerificationMethod = model.VerificationMethodNone
	}

	created, err := repo.CreateAccount(context.Background(), account)
	if err != nil {
		t.Fatalf("failed to seed account: %v", err)
	}

	return created
}

// seedVerifiedAccount inserts an active, verified account with the given role.
func seedVerifiedAccount(t *testing.T, repo *fakeAccountRepo, email string, role model.Role) *model.Account {
	t.Helper()

	return seedAccount(t, repo, &model.Account{
		PersonalEmail:      email,
		DisplayName:        "Test User",
		Role:               role,
		VerificationStatus: model.VerificationVerified,
		VerificationMethod: model.VerificationMethodManual,
	})
}
