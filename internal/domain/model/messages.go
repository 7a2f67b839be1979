package model

// Ключи текстов бота. Тексты можно переопределить в таблице messages.
const (
	WelcomeKey         = "welcome"
	WelcomeGuestKey    = "welcome_guest"
	LoginUsageKey      = "login_usage"
	LoginSuccessKey    = "login_success"
	LogoutKey          = "logout"
	SessionExpiredKey  = "session_expired"
	NoExamsKey         = "no_exams"
	ChooseExamKey      = "choose_exam"
	ChooseSubExamKey   = "choose_sub_exam"
	ChooseTestCardKey  = "choose_test_card"
	NoFullTestsKey     = "no_full_tests"
	UnlockConfirmKey   = "unlock_confirm"
	NotEnoughPointsKey = "not_enough_points"
	SubmitConfirmKey   = "submit_confirm"
	ReviewIntroKey     = "review_intro"
	NoResultsKey       = "no_results"
	NoPlansKey         = "no_plans"
	ShareUsageKey      = "share_usage"
	NoActiveAttemptKey = "no_active_attempt"
)

// Константы для кнопок главного меню. Привязаны к обработчикам в app.
// Не следует менять ключи без изменения bootstrapHandlersTelegram.
const (
	ExamsButtonKey       = "btn_exams"
	FullTestsButtonKey   = "btn_full_tests"
	ResultsButtonKey     = "btn_results"
	PerformanceButtonKey = "btn_performance"
	ProfileButtonKey     = "btn_profile"
	PlansButtonKey       = "btn_plans"
)

// MenuButtons - кнопки главного меню в порядке отображения
var MenuButtons = []string{
	ExamsButtonKey,
	FullTestsButtonKey,
	ResultsButtonKey,
	PerformanceButtonKey,
	ProfileButtonKey,
	PlansButtonKey,
}
