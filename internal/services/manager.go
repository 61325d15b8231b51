package services

import (
	"log/slog"
	"time"

	"github.com/SAP-F-2025/survey-assistant/internal/assistant"
	"github.com/SAP-F-2025/survey-assistant/internal/cache"
	"github.com/SAP-F-2025/survey-assistant/internal/events"
	"github.com/SAP-F-2025/survey-assistant/internal/formfill"
	"github.com/SAP-F-2025/survey-assistant/internal/repositories"
	"github.com/SAP-F-2025/survey-assistant/internal/source"
	"github.com/SAP-F-2025/survey-assistant/internal/storage"
	"github.com/SAP-F-2025/survey-assistant/internal/utils"
	"github.com/SAP-F-2025/survey-assistant/internal/validator"
)

// ServiceManager hands out the services sharing one set of dependencies.
type ServiceManager interface {
	Survey() SurveyService
	Responses() ResponseService
	Autofill() AutofillService
}

type ManagerDeps struct {
	Repo      repositories.SessionRepository
	Cache     *cache.SessionCache
	Source    source.QuestionSource
	CSV       *storage.CSVStore
	Publisher events.EventPublisher
	Validator *validator.Validator
	Logger    *slog.Logger

	Submitter *formfill.Submitter
	Drivers   DriverFactory
	Titles    TitleFetcher
	// Asker is nil when no model is configured.
	Asker assistant.Asker

	FetchTimeout time.Duration
}

type serviceManager struct {
	survey    SurveyService
	responses ResponseService
	autofill  AutofillService
}

func NewServiceManager(deps ManagerDeps) ServiceManager {
	responder := assistant.NewResponder(deps.Asker, utils.NewSlogLogger(deps.Logger), uint64(time.Now().UnixNano()))

	return &serviceManager{
		survey: NewSurveyService(SurveyDeps{
			Repo:         deps.Repo,
			Cache:        deps.Cache,
			Source:       deps.Source,
			CSV:          deps.CSV,
			Publisher:    deps.Publisher,
			Validator:    deps.Validator,
			Logger:       deps.Logger,
			Submitter:    deps.Submitter,
			Drivers:      deps.Drivers,
			Titles:       deps.Titles,
			Responder:    responder,
			FetchTimeout: deps.FetchTimeout,
		}),
		responses: NewResponseService(deps.Repo, deps.CSV, deps.Validator, deps.Logger),
		autofill: NewAutofillService(AutofillDeps{
			Source:       deps.Source,
			CSV:          deps.CSV,
			Asker:        deps.Asker,
			Submitter:    deps.Submitter,
			Drivers:      deps.Drivers,
			Validator:    deps.Validator,
			Logger:       deps.Logger,
			FetchTimeout: deps.FetchTimeout,
		}),
	}
}

func (m *serviceManager) Survey() SurveyService      { return m.survey }
func (m *serviceManager) Responses() ResponseService { return m.responses }
func (m *serviceManager) Autofill() AutofillService  { return m.autofill }
