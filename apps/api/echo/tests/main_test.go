package tests

import (
	"os"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	. "github.com/darasoft/shule/apps/api/echo"
	"github.com/darasoft/shule/core"
	"github.com/darasoft/shule/core/academic"
	"github.com/darasoft/shule/core/analytics"
	"github.com/darasoft/shule/core/user"
	emailsvc "github.com/darasoft/shule/services/email"
	inmemdb "github.com/darasoft/shule/storage/database/inmem"
)

var (
	conf       *core.Config
	validate   *validator.Validate
	translator ut.Translator
	mailSvc    core.EmailService

	app         Server
	usrRepo     user.Repository
	usrSvc      user.Service
	academicSvc academic.Service
)

func TestMain(m *testing.M) {
	conf = &core.Config{
		TestMode:         true,
		Env:              "TEST",
		AppName:          "Shule",
		SecretKey:        "s3cr3t-t3st-k3y",
		FrontendBaseURL:  "http://localhost:3000",
		DefaultFromEmail: "noreply@test.cd",
		Server: core.ServerConfig{
			JWTExpirationDelta:        1 * time.Hour,
			JWTRefreshExpirationDelta: 4 * time.Hour,
			PasswordResetTimeoutDelta: 1 * time.Hour,
		},
	}

	enLocale := en.New()
	translator, _ = ut.New(enLocale, enLocale).GetTranslator("en")
	validate = validator.New()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	mailSvc = emailsvc.NewConsoleServiceMock(conf)

	resetDB()
	os.Exit(m.Run())
}

// resetDB recreates the in-memory store, the services and the server so
// each test starts from a clean slate.
func resetDB() {
	db := inmemdb.Open()
	usrRepo = inmemdb.NewUserRepository(db)
	usrSvc = user.NewService(usrRepo, mailSvc, conf)
	academicSvc = academic.NewService(inmemdb.NewAcademicRepository(db), mailSvc, conf)
	analyticsSvc := analytics.NewService(inmemdb.NewAnalyticsRepository(db), nil)

	app = NewServer(ServerDeps{
		Conf:         conf,
		Logger:       noopLogger{},
		UserSvc:      usrSvc,
		AcademicSvc:  academicSvc,
		AnalyticsSvc: analyticsSvc,
		Validate:     validate,
		Translator:   translator,
	})
}

type noopLogger struct{}

func (noopLogger) Enable(bool)                  {}
func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
func (noopLogger) Fatal(string, ...interface{}) {}
