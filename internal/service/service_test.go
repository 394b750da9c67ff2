package service

import (
	"context"
	"errors"
	"math"
	"quiz_backend/internal/config"
	"quiz_backend/internal/model"
	"quiz_backend/internal/repository"
	"quiz_backend/internal/testutil"
	"quiz_backend/internal/util"
	"strconv"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"
)

type fixture struct {
	db      *gorm.DB
	users   *repository.UserRepository
	results *repository.ResultRepository
	tests   *TestService
	grading *GradingService
	auth    *AuthService
	user    *UserService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)

	users := repository.NewUserRepository(db)
	tests := repository.NewTestRepository(db)
	questions := repository.NewQuestionRepository(db)
	results := repository.NewResultRepository(db)

	cfg := &config.Config{JWT: config.JWTConfig{Secret: "test-secret", ExpireTime: time.Hour}}

	return &fixture{
		db:      db,
		users:   users,
		results: results,
		tests:   NewTestService(db, tests, questions, results),
		grading: NewGradingService(db, tests, questions, results, users),
		auth:    NewAuthService(users, cfg),
		user:    NewUserService(users),
	}
}

func (f *fixture) register(t *testing.T, email string) *model.User {
	t.Helper()
	u := &model.User{Name: "Alice", Email: email, Password: "secret"}
	if err := f.auth.Register(context.Background(), u); err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return u
}

func (f *fixture) addQuestion(t *testing.T, testID uint, correct model.Option) *model.Question {
	t.Helper()
	q, err := f.tests.AddQuestion(context.Background(), testID, QuestionInput{
		QuestionText:  "2 + 2 = ?",
		OptionA:       "3",
		OptionB:       "4",
		OptionC:       "5",
		OptionD:       "6",
		CorrectOption: correct,
	})
	if err != nil {
		t.Fatalf("add question: %v", err)
	}
	return q
}

// mathTest 三道题，正确答案依次为 A、B、C
func (f *fixture) mathTest(t *testing.T) (*model.Test, []*model.Question) {
	t.Helper()
	test, err := f.tests.CreateTest(context.Background(), "Math 101", "basic arithmetic", 2)
	if err != nil {
		t.Fatalf("create test: %v", err)
	}
	qs := []*model.Question{
		f.addQuestion(t, test.ID, model.OptionA),
		f.addQuestion(t, test.ID, model.OptionB),
		f.addQuestion(t, test.ID, model.OptionC),
	}
	return test, qs
}

func (f *fixture) resultCount(t *testing.T) int {
	t.Helper()
	rs, err := f.results.List(context.Background())
	if err != nil {
		t.Fatalf("list results: %v", err)
	}
	return len(rs)
}

func TestCreateTestAssignsDistinctIDs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.tests.CreateTest(ctx, "Math 101", "", 2)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	b, err := f.tests.CreateTest(ctx, "Math 101", "", 2)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if a.ID == 0 || a.ID == b.ID {
		t.Fatalf("ids = %d, %d, want distinct non-zero", a.ID, b.ID)
	}

	if _, err := f.tests.CreateTest(ctx, "  ", "", 1); !errors.Is(err, util.ErrInvalidArgument) {
		t.Fatalf("blank title err = %v", err)
	}
	if _, err := f.tests.CreateTest(ctx, "Neg", "", -1); !errors.Is(err, util.ErrInvalidArgument) {
		t.Fatalf("negative duration err = %v", err)
	}
}

func TestAddQuestionValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.tests.AddQuestion(ctx, 99, QuestionInput{QuestionText: "q", CorrectOption: model.OptionA})
	if util.MissingEntity(err) != "Test" {
		t.Fatalf("missing test err = %v", err)
	}

	test, _ := f.tests.CreateTest(ctx, "T", "", 1)
	_, err = f.tests.AddQuestion(ctx, test.ID, QuestionInput{QuestionText: "q", CorrectOption: "E"})
	if !errors.Is(err, util.ErrInvalidOption) {
		t.Fatalf("invalid option err = %v", err)
	}
	_, err = f.tests.AddQuestion(ctx, test.ID, QuestionInput{CorrectOption: model.OptionA})
	if !errors.Is(err, util.ErrInvalidArgument) {
		t.Fatalf("empty text err = %v", err)
	}
}

func TestListTestsAndDetail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	arith, qs := f.mathTest(t)
	empty, _ := f.tests.CreateTest(ctx, "Empty", "", 5)

	summaries, err := f.tests.ListTests(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("len = %d, want 2", len(summaries))
	}
	byID := map[uint]TestSummary{}
	for _, s := range summaries {
		byID[s.Test.ID] = s
	}
	if got := byID[arith.ID]; got.QuestionCount != 3 || got.EffectiveDuration != 6 {
		t.Fatalf("math summary = %+v, want 3 questions / 6 minutes", got)
	}
	if got := byID[empty.ID]; got.QuestionCount != 0 || got.EffectiveDuration != 0 {
		t.Fatalf("empty summary = %+v", got)
	}

	detail, err := f.tests.GetTestDetail(ctx, arith.ID)
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if detail.Summary.EffectiveDuration != 6 || len(detail.Questions) != 3 {
		t.Fatalf("detail = %+v", detail.Summary)
	}
	for i, q := range detail.Questions {
		if q.ID != qs[i].ID || q.CorrectOption != qs[i].CorrectOption {
			t.Fatalf("question %d = %+v, want %+v", i, q, qs[i])
		}
	}

	if _, err := f.tests.GetTestDetail(ctx, 999); util.MissingEntity(err) != "Test" {
		t.Fatalf("missing detail err = %v", err)
	}
}

func TestSubmitTestGradesAndPersists(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	test, qs := f.mathTest(t)
	alice := f.register(t, "alice@example.com")

	result, err := f.grading.SubmitTest(ctx, Submission{
		TestID: test.ID,
		UserID: alice.ID,
		Responses: []model.Response{
			{QuestionID: qs[0].ID, SelectedOption: model.OptionA},
			{QuestionID: qs[1].ID, SelectedOption: model.OptionB},
			{QuestionID: qs[2].ID, SelectedOption: model.OptionD},
		},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.ID == "" || result.TotalQuestions != 3 || result.CorrectAnswers != 2 {
		t.Fatalf("result = %+v", result)
	}
	if math.Abs(result.Percentage-66.666666) > 0.01 {
		t.Fatalf("percentage = %v, want ~66.67", result.Percentage)
	}
	if FormatPercentage(result.Percentage) != "66.67" {
		t.Fatalf("formatted = %s", FormatPercentage(result.Percentage))
	}

	mine, err := f.grading.ListResultsByUser(ctx, alice.ID)
	if err != nil || len(mine) != 1 || mine[0].ID != result.ID {
		t.Fatalf("mine = %+v, err = %v", mine, err)
	}
}

func TestSubmitTestWithNoQuestions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	test, _ := f.tests.CreateTest(ctx, "Empty", "", 3)
	bob := f.register(t, "bob@example.com")

	result, err := f.grading.SubmitTest(ctx, Submission{TestID: test.ID, UserID: bob.ID})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.TotalQuestions != 0 || result.CorrectAnswers != 0 || result.Percentage != 0 {
		t.Fatalf("result = %+v, want zeros", result)
	}
}

func TestSubmitTestFailuresWriteNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	test, qs := f.mathTest(t)
	other, _ := f.tests.CreateTest(ctx, "Other", "", 1)
	foreign := f.addQuestion(t, other.ID, model.OptionA)
	alice := f.register(t, "alice@example.com")

	cases := []struct {
		name   string
		sub    Submission
		entity string
	}{
		{"missing test", Submission{TestID: 999, UserID: alice.ID}, "Test"},
		{"missing user", Submission{TestID: test.ID, UserID: 999}, "User"},
		{"unknown question", Submission{TestID: test.ID, UserID: alice.ID, Responses: []model.Response{
			{QuestionID: 12345, SelectedOption: model.OptionA},
		}}, "Question"},
		{"question from another test", Submission{TestID: test.ID, UserID: alice.ID, Responses: []model.Response{
			{QuestionID: qs[0].ID, SelectedOption: model.OptionA},
			{QuestionID: foreign.ID, SelectedOption: model.OptionA},
		}}, "Question"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.grading.SubmitTest(ctx, tc.sub)
			if !errors.Is(err, util.ErrNotFound) || util.MissingEntity(err) != tc.entity {
				t.Fatalf("err = %v, want %s not found", err, tc.entity)
			}
		})
	}

	if n := f.resultCount(t); n != 0 {
		t.Fatalf("results = %d, want 0", n)
	}
}

func TestGradeDuplicateResponses(t *testing.T) {
	questions := []model.Question{
		{BaseModel: model.BaseModel{ID: 1}, CorrectOption: model.OptionA},
		{BaseModel: model.BaseModel{ID: 2}, CorrectOption: model.OptionB},
	}

	correct, err := Grade(questions, []model.Response{
		{QuestionID: 1, SelectedOption: model.OptionA},
		{QuestionID: 1, SelectedOption: model.OptionA},
		{QuestionID: 2, SelectedOption: model.OptionC},
		{QuestionID: 2, SelectedOption: model.OptionB},
	})
	if err != nil {
		t.Fatalf("grade: %v", err)
	}
	if correct != 1 {
		t.Fatalf("correct = %d, want 1", correct)
	}
}

func TestPercentage(t *testing.T) {
	if Percentage(0, 0) != 0 {
		t.Fatal("0/0 must be 0")
	}
	if Percentage(3, 3) != 100 {
		t.Fatal("3/3 must be 100")
	}
	if FormatPercentage(Percentage(1, 3)) != "33.33" {
		t.Fatalf("1/3 = %s", FormatPercentage(Percentage(1, 3)))
	}
}

func TestDeletePolicies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	test, qs := f.mathTest(t)
	if err := f.tests.DeleteQuestion(ctx, qs[2].ID); err != nil {
		t.Fatalf("delete question: %v", err)
	}
	detail, _ := f.tests.GetTestDetail(ctx, test.ID)
	if len(detail.Questions) != 2 {
		t.Fatalf("questions = %d, want 2", len(detail.Questions))
	}

	alice := f.register(t, "alice@example.com")
	if _, err := f.grading.SubmitTest(ctx, Submission{TestID: test.ID, UserID: alice.ID}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if err := f.tests.DeleteTest(ctx, test.ID); !errors.Is(err, util.ErrTestHasResults) {
		t.Fatalf("delete graded test err = %v", err)
	}
	if err := f.tests.DeleteQuestion(ctx, qs[0].ID); !errors.Is(err, util.ErrConflict) {
		t.Fatalf("delete graded question err = %v", err)
	}

	fresh, _ := f.tests.CreateTest(ctx, "Fresh", "", 1)
	f.addQuestion(t, fresh.ID, model.OptionD)
	if err := f.tests.DeleteTest(ctx, fresh.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.tests.GetTestDetail(ctx, fresh.ID); util.MissingEntity(err) != "Test" {
		t.Fatalf("deleted test still visible: %v", err)
	}
	if err := f.tests.DeleteTest(ctx, fresh.ID); util.MissingEntity(err) != "Test" {
		t.Fatalf("second delete err = %v", err)
	}
}

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice := f.register(t, "alice@example.com")
	if alice.Role != model.RoleUser {
		t.Fatalf("role = %s, want USER", alice.Role)
	}
	if alice.Password == "secret" {
		t.Fatal("password stored in plain text")
	}

	dup := &model.User{Name: "Alice 2", Email: "alice@example.com", Password: "x"}
	if err := f.auth.Register(ctx, dup); !errors.Is(err, util.ErrEmailRegistered) {
		t.Fatalf("duplicate err = %v", err)
	}
	if n, _ := f.users.Count(ctx); n != 1 {
		t.Fatalf("users = %d, want 1", n)
	}

	token, user, err := f.auth.Login(ctx, "alice@example.com", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, err := util.ParseJWT(token, "test-secret")
	if err != nil || claims.UserID != user.ID || claims.Role != model.RoleUser {
		t.Fatalf("claims = %+v, err = %v", claims, err)
	}

	if _, _, err := f.auth.Login(ctx, "alice@example.com", "wrong"); !errors.Is(err, util.ErrInvalidCredentials) {
		t.Fatalf("wrong password err = %v", err)
	}
	if _, _, err := f.auth.Login(ctx, "nobody@example.com", "secret"); !errors.Is(err, util.ErrInvalidCredentials) {
		t.Fatalf("unknown email err = %v", err)
	}
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cfg := config.AdminConfig{Name: "Admin", Email: "admin@gmail.com", Password: "admin"}

	created, err := f.user.EnsureAdmin(ctx, cfg)
	if err != nil || !created {
		t.Fatalf("first EnsureAdmin = %v, %v", created, err)
	}
	created, err = f.user.EnsureAdmin(ctx, cfg)
	if err != nil || created {
		t.Fatalf("second EnsureAdmin = %v, %v", created, err)
	}

	if n, _ := f.users.Count(ctx); n != 1 {
		t.Fatalf("users = %d, want 1", n)
	}
	_, admin, err := f.auth.Login(ctx, "admin@gmail.com", "admin")
	if err != nil || admin.Role != model.Admin {
		t.Fatalf("admin login = %+v, %v", admin, err)
	}
}

// 不同试卷、不同用户的并发提交与加题互不干扰，每次提交各自落一行成绩
func TestConcurrentSubmissionsStayIsolated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const pairs, perPair = 4, 10

	type pair struct {
		test      *model.Test
		user      *model.User
		questions []*model.Question
		correct   int
	}
	var ps []pair
	for i := 0; i < pairs; i++ {
		test, err := f.tests.CreateTest(ctx, "Concurrent "+strconv.Itoa(i), "", 1)
		if err != nil {
			t.Fatalf("create test: %v", err)
		}
		// 第 i 张试卷有 i+2 道题，答对 i+1 道
		p := pair{test: test, user: f.register(t, "user"+strconv.Itoa(i)+"@example.com"), correct: i + 1}
		for j := 0; j < i+2; j++ {
			p.questions = append(p.questions, f.addQuestion(t, test.ID, model.OptionA))
		}
		ps = append(ps, p)
	}

	growing, err := f.tests.CreateTest(ctx, "Growing", "", 1)
	if err != nil {
		t.Fatalf("create test: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, pairs*perPair*2)
	for _, p := range ps {
		var responses []model.Response
		for j, q := range p.questions {
			opt := model.OptionB
			if j < p.correct {
				opt = model.OptionA
			}
			responses = append(responses, model.Response{QuestionID: q.ID, SelectedOption: opt})
		}
		for k := 0; k < perPair; k++ {
			wg.Add(2)
			go func(p pair) {
				defer wg.Done()
				_, err := f.grading.SubmitTest(ctx, Submission{TestID: p.test.ID, UserID: p.user.ID, Responses: responses})
				errs <- err
			}(p)
			go func() {
				defer wg.Done()
				_, err := f.tests.AddQuestion(ctx, growing.ID, QuestionInput{QuestionText: "q", CorrectOption: model.OptionC})
				errs <- err
			}()
		}
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent call: %v", err)
		}
	}

	results, err := f.results.List(ctx)
	if err != nil {
		t.Fatalf("list results: %v", err)
	}
	if len(results) != pairs*perPair {
		t.Fatalf("results = %d, want %d", len(results), pairs*perPair)
	}

	byTest := map[uint]pair{}
	for _, p := range ps {
		byTest[p.test.ID] = p
	}
	perTest := map[uint]int{}
	for _, r := range results {
		p, ok := byTest[r.TestID]
		if !ok {
			t.Fatalf("result for unexpected test %d", r.TestID)
		}
		total := len(p.questions)
		if r.UserID != p.user.ID || r.TotalQuestions != total || r.CorrectAnswers != p.correct || r.Percentage != Percentage(p.correct, total) {
			t.Fatalf("result %+v does not match test %d (total %d, correct %d)", r, p.test.ID, total, p.correct)
		}
		perTest[r.TestID]++
	}
	for id, n := range perTest {
		if n != perPair {
			t.Fatalf("test %d has %d results, want %d", id, n, perPair)
		}
	}

	detail, err := f.tests.GetTestDetail(ctx, growing.ID)
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if detail.Summary.QuestionCount != pairs*perPair {
		t.Fatalf("growing test has %d questions, want %d", detail.Summary.QuestionCount, pairs*perPair)
	}
}
