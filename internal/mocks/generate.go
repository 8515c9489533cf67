// Package mocks provides mock implementations for testing the leadrun engine.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for
// the repository and port interfaces in internal/core. To regenerate after
// interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	mockRepo := mocks.NewMockRunRepository(ctrl)
//	mockRepo.EXPECT().GetByID(gomock.Any(), "run-1").Return(job, nil)
package mocks

//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=run_repository_mock.go github.com/missionctl/leadrun-engine/internal/core RunRepository

//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=lead_repository_mock.go github.com/missionctl/leadrun-engine/internal/core LeadRepository

//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=receipt_repository_mock.go github.com/missionctl/leadrun-engine/internal/core ReceiptRepository

//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=dnc_repository_mock.go github.com/missionctl/leadrun-engine/internal/core DncRepository

//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=followup_repository_mock.go github.com/missionctl/leadrun-engine/internal/core FollowupRepository

//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=quota_repository_mock.go github.com/missionctl/leadrun-engine/internal/core QuotaRepository

//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=alert_repository_mock.go github.com/missionctl/leadrun-engine/internal/core AlertRepository

//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=idempotency_repository_mock.go github.com/missionctl/leadrun-engine/internal/core IdempotencyRepository

//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=task_queue_mock.go github.com/missionctl/leadrun-engine/internal/core TaskQueue

//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=channels_mock.go github.com/missionctl/leadrun-engine/internal/core EmailSender,SMSSender,CallPlacer,AvatarRenderer,CalendarClient
