package tasks

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/suite"

	"nameaffirm/internal/verifiedname"
	"nameaffirm/internal/verifiedname/service"
	"nameaffirm/internal/verifiedname/store"
)

const (
	taskTestUserID   = "jondoe"
	taskTestName     = "Jonathan Doe"
	taskTestProfile  = "Jon Doe"
	idvAttemptID     = int64(123)
	proctorAttemptID = int64(456)
)

type TasksSuite struct {
	suite.Suite
	store    *store.InMemoryStore
	svc      *service.Service
	handlers *Handlers
	ctx      context.Context
}

func (s *TasksSuite) SetupTest() {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	s.store = store.NewInMemoryStore()
	s.svc = service.New(s.store, nil, log)
	s.handlers = NewHandlers(s.svc, log)
	s.ctx = context.Background()
}

func TestTasksSuite(t *testing.T) {
	suite.Run(t, new(TasksSuite))
}

func (s *TasksSuite) createName(verificationAttemptID, proctoredExamAttemptID *int64, status verifiedname.Status) *verifiedname.VerifiedName {
	record, err := s.svc.CreateVerifiedName(s.ctx, service.CreateRequest{
		UserID:                 taskTestUserID,
		VerifiedName:           taskTestName,
		ProfileName:            taskTestProfile,
		VerificationAttemptID:  verificationAttemptID,
		ProctoredExamAttemptID: proctoredExamAttemptID,
		Status:                 status,
	})
	s.Require().NoError(err)
	return record
}

func (s *TasksSuite) history() []*verifiedname.VerifiedName {
	records, err := s.svc.GetVerifiedNameHistory(s.ctx, taskTestUserID)
	s.Require().NoError(err)
	return records
}

func (s *TasksSuite) TestIDVLinksExistingUnlinkedRecord() {
	existing := s.createName(nil, nil, verifiedname.StatusPending)

	err := s.handlers.IDVUpdateVerifiedName(s.ctx, IDVEvent{
		AttemptID:   idvAttemptID,
		UserID:      taskTestUserID,
		Status:      verifiedname.StatusApproved,
		PhotoIDName: taskTestName,
		FullName:    taskTestProfile,
	})
	s.Require().NoError(err)

	history := s.history()
	s.Require().Len(history, 1)
	s.Equal(existing.ID, history[0].ID)
	s.Require().NotNil(history[0].VerificationAttemptID)
	s.Equal(idvAttemptID, *history[0].VerificationAttemptID)
	s.Equal(verifiedname.StatusApproved, history[0].Status)
}

func (s *TasksSuite) TestIDVLinksAllUnlinkedRecordsWithMatchingName() {
	s.createName(nil, nil, verifiedname.StatusPending)
	s.createName(nil, nil, verifiedname.StatusPending)

	err := s.handlers.IDVUpdateVerifiedName(s.ctx, IDVEvent{
		AttemptID:   idvAttemptID,
		UserID:      taskTestUserID,
		Status:      verifiedname.StatusSubmitted,
		PhotoIDName: taskTestName,
		FullName:    taskTestProfile,
	})
	s.Require().NoError(err)

	for _, record := range s.history() {
		s.Require().NotNil(record.VerificationAttemptID)
		s.Equal(idvAttemptID, *record.VerificationAttemptID)
		s.Equal(verifiedname.StatusSubmitted, record.Status)
	}
}

func (s *TasksSuite) TestIDVLeavesLinkedRecordsAlone() {
	proctoring := proctorAttemptID
	linked := s.createName(nil, &proctoring, verifiedname.StatusSubmitted)

	err := s.handlers.IDVUpdateVerifiedName(s.ctx, IDVEvent{
		AttemptID:   idvAttemptID,
		UserID:      taskTestUserID,
		Status:      verifiedname.StatusApproved,
		PhotoIDName: taskTestName,
		FullName:    taskTestProfile,
	})
	s.Require().NoError(err)

	history := s.history()
	s.Require().Len(history, 1)
	s.Equal(linked.ID, history[0].ID)
	s.Nil(history[0].VerificationAttemptID)
	// a record linked to proctoring keeps its status even when the name matches
	s.Equal(verifiedname.StatusSubmitted, history[0].Status)
}

func (s *TasksSuite) TestIDVCreatesRecordWhenNoneMatch() {
	err := s.handlers.IDVUpdateVerifiedName(s.ctx, IDVEvent{
		AttemptID:   idvAttemptID,
		UserID:      taskTestUserID,
		Status:      verifiedname.StatusDenied,
		PhotoIDName: taskTestName,
		FullName:    taskTestProfile,
	})
	s.Require().NoError(err)

	history := s.history()
	s.Require().Len(history, 1)
	s.Equal(taskTestName, history[0].VerifiedName)
	s.Equal(taskTestProfile, history[0].ProfileName)
	s.Require().NotNil(history[0].VerificationAttemptID)
	s.Equal(idvAttemptID, *history[0].VerificationAttemptID)
	s.Equal(verifiedname.StatusDenied, history[0].Status)
}

func (s *TasksSuite) TestProctoringSkipsUserWithApprovedName() {
	s.createName(nil, nil, verifiedname.StatusApproved)

	err := s.handlers.ProctoringUpdateVerifiedName(s.ctx, ProctoringEvent{
		AttemptID:   proctorAttemptID,
		UserID:      taskTestUserID,
		Status:      verifiedname.StatusSubmitted,
		FullName:    "Someone Else",
		ProfileName: taskTestProfile,
	})
	s.Require().NoError(err)

	history := s.history()
	s.Require().Len(history, 1)
	s.Equal(verifiedname.StatusApproved, history[0].Status)
}

func (s *TasksSuite) TestProctoringUpdatesExistingAttemptRecord() {
	proctoring := proctorAttemptID
	existing := s.createName(nil, &proctoring, verifiedname.StatusSubmitted)

	err := s.handlers.ProctoringUpdateVerifiedName(s.ctx, ProctoringEvent{
		AttemptID:   proctorAttemptID,
		UserID:      taskTestUserID,
		Status:      verifiedname.StatusDenied,
		FullName:    taskTestName,
		ProfileName: taskTestProfile,
	})
	s.Require().NoError(err)

	history := s.history()
	s.Require().Len(history, 1)
	s.Equal(existing.ID, history[0].ID)
	s.Equal(verifiedname.StatusDenied, history[0].Status)
}

func (s *TasksSuite) TestProctoringCreatesRecordWithBothNames() {
	err := s.handlers.ProctoringUpdateVerifiedName(s.ctx, ProctoringEvent{
		AttemptID:   proctorAttemptID,
		UserID:      taskTestUserID,
		Status:      verifiedname.StatusPending,
		FullName:    taskTestName,
		ProfileName: taskTestProfile,
	})
	s.Require().NoError(err)

	history := s.history()
	s.Require().Len(history, 1)
	s.Equal(taskTestName, history[0].VerifiedName)
	s.Require().NotNil(history[0].ProctoredExamAttemptID)
	s.Equal(proctorAttemptID, *history[0].ProctoredExamAttemptID)
}

func (s *TasksSuite) TestProctoringSkipsCreateWithoutBothNames() {
	err := s.handlers.ProctoringUpdateVerifiedName(s.ctx, ProctoringEvent{
		AttemptID:   proctorAttemptID,
		UserID:      taskTestUserID,
		Status:      verifiedname.StatusPending,
		FullName:    taskTestName,
		ProfileName: "",
	})
	s.Require().NoError(err)
	s.Empty(s.history())
}
