package queue

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/anthera/powerleave/internal/repository"
)

func TestNotificationText(t *testing.T) {
	ev := LeaveReviewedEvent{
		LeaveTypeName: "Ferie",
		StartDate:     "2025-06-01",
		EndDate:       "2025-06-03",
		Days:          3,
		Status:        "approved",
	}
	got := NotificationText(ev)
	want := "Your Ferie request for 2025-06-01 – 2025-06-03 (3 days) was approved."
	if got != want {
		t.Errorf("NotificationText = %q, want %q", got, want)
	}

	ev.Status = "rejected"
	if got := NotificationText(ev); got != "Your Ferie request for 2025-06-01 – 2025-06-03 (3 days) was rejected." {
		t.Errorf("NotificationText(rejected) = %q", got)
	}
}

func TestHandleMessageStoresNotification(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	messages := repository.NewMessageRepo(db)

	mock.ExpectExec(`INSERT INTO messages`).
		WithArgs(uint64(9), uint64(5), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	body := []byte(`{"request_id":7,"user_id":5,"reviewer_id":9,"leave_type_name":"Ferie",` +
		`"start_date":"2025-06-01","end_date":"2025-06-03","days":3,"status":"approved"}`)
	if err := handleMessage(body, messages); err != nil {
		t.Fatalf("handleMessage: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestHandleMessageRejectsGarbage(t *testing.T) {
	if err := handleMessage([]byte("not json"), nil); err == nil {
		t.Fatal("expected unmarshal error")
	}
}
