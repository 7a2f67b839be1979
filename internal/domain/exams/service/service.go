package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/IT-Nick/exambot/internal/domain/attempts"
	"github.com/IT-Nick/exambot/internal/domain/model"
	"github.com/IT-Nick/exambot/internal/infra/apiclient"
)

const (
	examsPath           = "/exams/api/exams/"
	subExamsPath        = "/exams/api/sub-exams/"
	fullLengthTestsPath = "/exams/api/sub-exams/with_full_length_tests/"
	testCardsPath       = "/exams/api/test-cards/"
	startTestPath       = "/exams/api/submissions/start_test/"
	submissionsPath     = "/exams/api/submissions/"
	myResultsPath       = "/exams/api/submissions/my_results/"
	performanceHubPath  = "/exams/api/performance-hub/"
	profilePath         = "/accounts/profile/"
	plansPath           = "/api/subscriptions/plans/"
)

// PerformanceFilters - допустимые периоды performance-hub
var PerformanceFilters = []string{"all", "7d", "30d"}

// ErrEmptyAttempt - сервер вернул попытку без номера или без вопросов
var ErrEmptyAttempt = errors.New("attempt has no submission id or questions")

// Clients выдает клиента API для чата
type Clients interface {
	ForChat(chatID int64) *apiclient.Client
}

// ExamService для работы с каталогом, попытками и результатами через backend API
type ExamService struct {
	clients Clients
	ledger  *apiclient.KeyLedger
}

// NewExamService создает новый экземпляр ExamService
func NewExamService(clients Clients, ledger *apiclient.KeyLedger) *ExamService {
	return &ExamService{
		clients: clients,
		ledger:  ledger,
	}
}

// Login входит в backend API от имени чата
func (s *ExamService) Login(ctx context.Context, chatID int64, username, password string) error {
	if err := s.clients.ForChat(chatID).Login(ctx, username, password); err != nil {
		return fmt.Errorf("failed to login: %w", err)
	}
	return nil
}

// Logout удаляет токены чата
func (s *ExamService) Logout(ctx context.Context, chatID int64) error {
	return s.clients.ForChat(chatID).Logout(ctx)
}

// LoggedIn проверяет, есть ли у чата сессия
func (s *ExamService) LoggedIn(ctx context.Context, chatID int64) (bool, error) {
	return s.clients.ForChat(chatID).LoggedIn(ctx)
}

// Profile получает профиль пользователя
func (s *ExamService) Profile(ctx context.Context, chatID int64) (*model.UserProfile, error) {
	var profile model.UserProfile
	if err := s.clients.ForChat(chatID).Get(ctx, profilePath, &profile); err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &profile, nil
}

// ListExams получает список экзаменов
func (s *ExamService) ListExams(ctx context.Context, chatID int64) ([]model.Exam, error) {
	var exams []model.Exam
	if err := s.clients.ForChat(chatID).Get(ctx, examsPath, &exams); err != nil {
		return nil, fmt.Errorf("failed to list exams: %w", err)
	}
	return exams, nil
}

// ListSubExams получает разделы экзамена
func (s *ExamService) ListSubExams(ctx context.Context, chatID int64, examID model.ID) ([]model.SubExam, error) {
	var subExams []model.SubExam
	path := subExamsPath + "?" + url.Values{"exam": {string(examID)}}.Encode()
	if err := s.clients.ForChat(chatID).Get(ctx, path, &subExams); err != nil {
		return nil, fmt.Errorf("failed to list sub exams of exam %s: %w", examID, err)
	}
	return subExams, nil
}

// ListTestCards получает тесты раздела
func (s *ExamService) ListTestCards(ctx context.Context, chatID int64, subExamID model.ID) ([]model.TestCard, error) {
	var cards []model.TestCard
	path := testCardsPath + "?" + url.Values{"sub_exam": {string(subExamID)}}.Encode()
	if err := s.clients.ForChat(chatID).Get(ctx, path, &cards); err != nil {
		return nil, fmt.Errorf("failed to list test cards of sub exam %s: %w", subExamID, err)
	}
	return cards, nil
}

// ListFullLengthTests получает разделы с платными полными тестами
func (s *ExamService) ListFullLengthTests(ctx context.Context, chatID int64) ([]model.SubExamWithTests, error) {
	var groups []model.SubExamWithTests
	if err := s.clients.ForChat(chatID).Get(ctx, fullLengthTestsPath, &groups); err != nil {
		return nil, fmt.Errorf("failed to list full length tests: %w", err)
	}
	return groups, nil
}

// UnlockStatus проверяет, открыт ли полный тест и хватает ли баллов
func (s *ExamService) UnlockStatus(ctx context.Context, chatID int64, cardID model.ID) (*model.UnlockStatus, error) {
	var status model.UnlockStatus
	path := fmt.Sprintf("%s%s/check_unlock_status/", testCardsPath, url.PathEscape(string(cardID)))
	if err := s.clients.ForChat(chatID).Get(ctx, path, &status); err != nil {
		return nil, fmt.Errorf("failed to check unlock status of card %s: %w", cardID, err)
	}
	return &status, nil
}

// Unlock открывает полный тест за баллы.
// Повтор после сетевой ошибки отправляется с тем же ключом идемпотентности.
func (s *ExamService) Unlock(ctx context.Context, chatID int64, cardID model.ID) error {
	intent := fmt.Sprintf("unlock:%d:%s", chatID, cardID)
	key := s.ledger.Key(intent)

	path := fmt.Sprintf("%s%s/unlock_full_length_test/", testCardsPath, url.PathEscape(string(cardID)))
	err := s.clients.ForChat(chatID).Post(ctx, path, struct{}{}, nil, apiclient.WithIdempotencyKey(key))
	s.ledger.Settle(intent, err)
	if err != nil {
		return fmt.Errorf("failed to unlock card %s: %w", cardID, err)
	}
	return nil
}

type startTestRequest struct {
	TestCardID model.ID `json:"test_card_id"`
}

// StartAttempt начинает попытку. Номер попытки назначает сервер.
func (s *ExamService) StartAttempt(ctx context.Context, chatID int64, cardID model.ID) (*model.Attempt, error) {
	var attempt model.Attempt
	if err := s.clients.ForChat(chatID).Post(ctx, startTestPath, startTestRequest{TestCardID: cardID}, &attempt); err != nil {
		return nil, fmt.Errorf("failed to start test card %s: %w", cardID, err)
	}
	if attempt.SubmissionID == 0 || len(attempt.TestCard.Questions) == 0 {
		return nil, fmt.Errorf("failed to start test card %s: %w", cardID, ErrEmptyAttempt)
	}
	return &attempt, nil
}

// SubmitAttempt отправляет ответы попытки
func (s *ExamService) SubmitAttempt(ctx context.Context, chatID int64, submissionID int, req model.SubmitRequest) (*model.SubmitOutcome, error) {
	var outcome model.SubmitOutcome
	path := fmt.Sprintf("%s%d/submit_test/", submissionsPath, submissionID)
	if err := s.clients.ForChat(chatID).Post(ctx, path, req, &outcome); err != nil {
		return nil, fmt.Errorf("failed to submit attempt %d: %w", submissionID, err)
	}
	return &outcome, nil
}

// SaveMarkReasons сохраняет причины отметки вопросов
func (s *ExamService) SaveMarkReasons(ctx context.Context, chatID int64, submissionID int, req model.SaveReasonsRequest) error {
	path := fmt.Sprintf("%s%d/save_mark_reasons/", submissionsPath, submissionID)
	if err := s.clients.ForChat(chatID).Post(ctx, path, req, nil); err != nil {
		return fmt.Errorf("failed to save mark reasons of attempt %d: %w", submissionID, err)
	}
	return nil
}

// GetResult получает результат попытки
func (s *ExamService) GetResult(ctx context.Context, chatID int64, submissionID int) (*model.SubmissionResult, error) {
	var result model.SubmissionResult
	path := fmt.Sprintf("%s%d/", submissionsPath, submissionID)
	if err := s.clients.ForChat(chatID).Get(ctx, path, &result); err != nil {
		return nil, fmt.Errorf("failed to get result of attempt %d: %w", submissionID, err)
	}
	return &result, nil
}

// MyResults получает историю попыток
func (s *ExamService) MyResults(ctx context.Context, chatID int64) ([]model.MyResult, error) {
	var results []model.MyResult
	if err := s.clients.ForChat(chatID).Get(ctx, myResultsPath, &results); err != nil {
		return nil, fmt.Errorf("failed to get my results: %w", err)
	}
	return results, nil
}

// PerformanceHub получает сводку успеваемости за период
func (s *ExamService) PerformanceHub(ctx context.Context, chatID int64, filter string) (*model.PerformanceHub, error) {
	var hub model.PerformanceHub
	path := performanceHubPath + "?" + url.Values{"filter": {filter}}.Encode()
	if err := s.clients.ForChat(chatID).Get(ctx, path, &hub); err != nil {
		return nil, fmt.Errorf("failed to get performance hub: %w", err)
	}
	return &hub, nil
}

// Plans получает тарифы подписки
func (s *ExamService) Plans(ctx context.Context, chatID int64) ([]model.Plan, error) {
	var plans []model.Plan
	if err := s.clients.ForChat(chatID).Get(ctx, plansPath, &plans); err != nil {
		return nil, fmt.Errorf("failed to get plans: %w", err)
	}
	return plans, nil
}

// CreateOrder создает заказ на оплату тарифа
func (s *ExamService) CreateOrder(ctx context.Context, chatID int64, planID int) (*model.Order, error) {
	intent := fmt.Sprintf("order:%d:%d", chatID, planID)
	key := s.ledger.Key(intent)

	var order model.Order
	path := fmt.Sprintf("%s%d/create_order/", plansPath, planID)
	err := s.clients.ForChat(chatID).Post(ctx, path, struct{}{}, &order, apiclient.WithIdempotencyKey(key))
	s.ledger.Settle(intent, err)
	if err != nil {
		return nil, fmt.Errorf("failed to create order for plan %d: %w", planID, err)
	}
	return &order, nil
}

// SubmitterFor привязывает отправку ответов к чату
func (s *ExamService) SubmitterFor(chatID int64) attempts.Submitter {
	return chatBound{service: s, chatID: chatID}
}

// ReasonSaverFor привязывает сохранение причин к чату
func (s *ExamService) ReasonSaverFor(chatID int64) attempts.ReasonSaver {
	return chatBound{service: s, chatID: chatID}
}

type chatBound struct {
	service *ExamService
	chatID  int64
}

func (b chatBound) SubmitAttempt(ctx context.Context, submissionID int, req model.SubmitRequest) (*model.SubmitOutcome, error) {
	return b.service.SubmitAttempt(ctx, b.chatID, submissionID, req)
}

func (b chatBound) SaveMarkReasons(ctx context.Context, submissionID int, req model.SaveReasonsRequest) error {
	return b.service.SaveMarkReasons(ctx, b.chatID, submissionID, req)
}
