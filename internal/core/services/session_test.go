package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/grasp/internal/core/domain"
)

type sessionFixture struct {
	session    *Session
	summariser *mockSummariser
	answerer   *mockAnswerer
	grader     *mockGrader
}

func newSessionFixture() *sessionFixture {
	f := &sessionFixture{
		summariser: &mockSummariser{},
		answerer:   &mockAnswerer{result: domain.NewScoredAnswer("on the mat", 80, "The cat sat on the mat.")},
		grader:     &mockGrader{},
	}
	settings := domain.DefaultAppSettings()
	summaries := newTestSummaryService(f.summariser, settings.Summary, nil)
	answers := NewAnswerService(f.answerer, testBackendSettings(), "test", nil)
	challenges := NewChallengeService(&mockGenerator{}, f.grader,
		domain.ChallengeSettings{QuestionCount: 3, ExcerptWords: 20}, testBackendSettings(), "test", nil)
	selection := domain.BackendSelection{Kind: domain.BackendLocal, Reason: "ollama not reachable"}

	f.session = NewSession(&mockRegistry{}, summaries, answers, challenges, selection, 150)
	return f
}

func (f *sessionFixture) load(t *testing.T, name, content string) {
	t.Helper()
	_, err := f.session.Load(context.Background(), name, []byte(content))
	require.NoError(t, err)
}

func TestSession_Load(t *testing.T) {
	f := newSessionFixture()

	info, err := f.session.Load(context.Background(), "/tmp/notes/cat.txt", []byte("  The cat sat   on the mat. @@@ "))

	require.NoError(t, err)
	assert.Equal(t, "cat.txt", info.Title)
	assert.Equal(t, ".txt", info.Extension)
	assert.Equal(t, 6, info.Words)
	assert.NotEmpty(t, info.ID)

	doc := f.session.Document()
	require.NotNil(t, doc)
	assert.Equal(t, "The cat sat on the mat.", doc.Content)
	assert.Equal(t, "/tmp/notes/cat.txt", doc.URI)
	require.NotNil(t, f.session.Summary())
	assert.Equal(t, "The cat sat on the mat.", f.session.Summary().Text)
}

func TestSession_LoadRejectsUnsupportedFormat(t *testing.T) {
	f := newSessionFixture()

	_, err := f.session.Load(context.Background(), "report.docx", []byte("text"))

	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
	assert.Nil(t, f.session.Document())
}

func TestSession_LoadRejectsEmptyDocument(t *testing.T) {
	f := newSessionFixture()

	_, err := f.session.Load(context.Background(), "blank.txt", []byte(" @@ ## \n\t"))

	assert.ErrorIs(t, err, domain.ErrEmptyDocument)
	assert.Zero(t, f.summariser.callCount())
}

func TestSession_LoadFailureKeepsPriorState(t *testing.T) {
	f := newSessionFixture()
	f.load(t, "first.txt", "The first document.")
	_, err := f.session.Ask(context.Background(), "What?")
	require.NoError(t, err)

	f.summariser.fn = func(context.Context, string, int, int) (string, error) {
		return "", errors.New("backend down")
	}
	_, err = f.session.Load(context.Background(), "second.txt", []byte("The second document."))

	require.ErrorIs(t, err, domain.ErrBackend)
	assert.Equal(t, "The first document.", f.session.Document().Content)
	assert.Len(t, f.session.History(), 2)
}

func TestSession_LoadClearsQuestionsAndHistory(t *testing.T) {
	f := newSessionFixture()
	f.load(t, "a.txt", strings.Repeat("The cat sat on the mat today. ", 20))
	_, err := f.session.Ask(context.Background(), "Where?")
	require.NoError(t, err)
	_, err = f.session.GenerateChallenge(context.Background())
	require.NoError(t, err)

	f.load(t, "b.txt", "Another document entirely.")

	assert.Empty(t, f.session.History())
	assert.Nil(t, f.session.Questions())
}

func TestSession_AskRecordsHistory(t *testing.T) {
	f := newSessionFixture()

	_, err := f.session.Ask(context.Background(), "Where?")
	require.ErrorIs(t, err, domain.ErrNoDocument)

	f.load(t, "cat.txt", catDoc)
	result, err := f.session.Ask(context.Background(), " Where did the cat sit? ")
	require.NoError(t, err)
	assert.Equal(t, "on the mat", result.Answer)

	history := f.session.History()
	require.Len(t, history, 2)
	assert.Equal(t, domain.ChatRoleUser, history[0].Role)
	assert.Equal(t, "Where did the cat sit?", history[0].Content)
	assert.Equal(t, domain.ChatRoleAssistant, history[1].Role)
	assert.Same(t, result, history[1].Result)

	f.session.ClearHistory()
	assert.Empty(t, f.session.History())
}

func TestSession_RejectsConcurrentOperations(t *testing.T) {
	f := newSessionFixture()
	f.load(t, "cat.txt", catDoc)

	started := make(chan struct{})
	release := make(chan struct{})
	f.summariser.fn = func(context.Context, string, int, int) (string, error) {
		close(started)
		<-release
		return "summary.", nil
	}

	errc := make(chan error, 1)
	go func() {
		_, err := f.session.Load(context.Background(), "dog.txt", []byte("The dog slept."))
		errc <- err
	}()
	<-started

	_, err := f.session.Ask(context.Background(), "Where?")
	assert.ErrorIs(t, err, domain.ErrOperationInProgress)
	_, err = f.session.GenerateChallenge(context.Background())
	assert.ErrorIs(t, err, domain.ErrOperationInProgress)
	assert.Equal(t, catDoc, f.session.Document().Content, "reads see the previous state")

	close(release)
	require.NoError(t, <-errc)
	assert.Equal(t, "The dog slept.", f.session.Document().Content)
}

func TestSession_ChallengeFlow(t *testing.T) {
	f := newSessionFixture()
	assert.ErrorIs(t, f.session.SetAnswer(0, "x"), domain.ErrNoQuestions)

	f.load(t, "cat.txt", strings.Repeat("The cat sat on the mat today. ", 20))
	set, err := f.session.GenerateChallenge(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, set.Len())

	require.NoError(t, f.session.SetAnswer(0, "mat"))
	require.NoError(t, f.session.SetAnswer(1, "cat"))
	assert.ErrorIs(t, f.session.SetAnswer(7, "x"), domain.ErrQuestionIndex)

	_, err = f.session.Submit(context.Background())
	require.ErrorIs(t, err, domain.ErrUnansweredQuestions)
	assert.Zero(t, f.grader.calls)
	assert.Equal(t, "mat", f.session.Questions().Answers[0].Answer, "answers survive a refused submit")

	require.NoError(t, f.session.SetAnswer(2, "dog"))
	graded, err := f.session.Submit(context.Background())
	require.NoError(t, err)
	assert.True(t, graded.ShowResults)
	assert.Equal(t, 2, graded.Score())

	require.NoError(t, f.session.HideResults())
	current := f.session.Questions()
	assert.False(t, current.ShowResults)
	assert.Equal(t, "dog", current.Answers[2].Answer)

	require.NoError(t, f.session.ResetAnswers())
	assert.Equal(t, []int{0, 1, 2}, f.session.Questions().Unanswered())
}

func TestSession_SubmitFailureLeavesSetUntouched(t *testing.T) {
	f := newSessionFixture()
	f.grader.failOn = 3
	f.load(t, "cat.txt", strings.Repeat("The cat sat on the mat today. ", 20))
	_, err := f.session.GenerateChallenge(context.Background())
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		require.NoError(t, f.session.SetAnswer(i, "mat"))
	}

	_, err = f.session.Submit(context.Background())

	require.ErrorIs(t, err, domain.ErrBackend)
	set := f.session.Questions()
	assert.False(t, set.ShowResults)
	for i := 0; i < 3; i++ {
		assert.Nil(t, set.Answers[i].Evaluation)
	}
}

func TestSession_QuestionsAreCopies(t *testing.T) {
	f := newSessionFixture()
	f.load(t, "cat.txt", strings.Repeat("The cat sat on the mat today. ", 20))
	set, err := f.session.GenerateChallenge(context.Background())
	require.NoError(t, err)

	set.Answers[0].Answer = "tampered"

	assert.Empty(t, f.session.Questions().Answers[0].Answer)
}

func TestSession_Snapshot(t *testing.T) {
	f := newSessionFixture()
	empty := f.session.Snapshot()
	assert.Nil(t, empty.Document)
	assert.Equal(t, "Using local extractive engine (ollama not reachable)", empty.Status)
	assert.Equal(t, "extractive", empty.Strategy)

	f.load(t, "cat.txt", catDoc)
	snap := f.session.Snapshot()
	require.NotNil(t, snap.Document)
	assert.Equal(t, "cat.txt", snap.Document.Title)
	require.NotNil(t, snap.Summary)
	assert.Equal(t, f.session.Status(), snap.Status)
}

func TestSession_SubmitAnswers(t *testing.T) {
	f := newSessionFixture()
	ctx := context.Background()
	_, err := f.session.SubmitAnswers(ctx, []string{"mat"})
	assert.ErrorIs(t, err, domain.ErrNoQuestions)

	f.load(t, "cat.txt", strings.Repeat("The cat sat on the mat today. ", 20))
	_, err = f.session.GenerateChallenge(ctx)
	require.NoError(t, err)

	graded, err := f.session.SubmitAnswers(ctx, []string{"mat", "cat", "dog"})
	require.NoError(t, err)
	require.True(t, graded.ShowResults)
	first := f.session.Questions()

	tests := []struct {
		name    string
		answers []string
	}{
		{"blank answer", []string{"mat", "  ", "dog"}},
		{"too few answers", []string{"mat", "cat"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := f.grader.calls

			_, err := f.session.SubmitAnswers(ctx, tt.answers)

			require.ErrorIs(t, err, domain.ErrUnansweredQuestions)
			assert.Equal(t, calls, f.grader.calls)
			assert.Equal(t, first, f.session.Questions())
		})
	}
}

func TestSession_SubmitAnswersFailureKeepsPriorResults(t *testing.T) {
	f := newSessionFixture()
	ctx := context.Background()
	f.load(t, "cat.txt", strings.Repeat("The cat sat on the mat today. ", 20))
	_, err := f.session.GenerateChallenge(ctx)
	require.NoError(t, err)
	_, err = f.session.SubmitAnswers(ctx, []string{"mat", "cat", "dog"})
	require.NoError(t, err)
	first := f.session.Questions()

	f.grader.failOn = f.grader.calls + 2
	_, err = f.session.SubmitAnswers(ctx, []string{"rug", "dog", "cat"})

	require.ErrorIs(t, err, domain.ErrBackend)
	assert.Equal(t, first, f.session.Questions())
}
