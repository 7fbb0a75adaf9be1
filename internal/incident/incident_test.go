package incident

import (
	"testing"

	"chatwarden/internal/model"
	"chatwarden/internal/schema"
)

func msgs(t *testing.T, pairs ...[2]string) model.Conversation {
	t.Helper()
	var c model.Conversation
	for i, p := range pairs {
		role, err := model.ParseRole(p[0])
		if err != nil {
			t.Fatalf("bad test role: %v", err)
		}
		c = append(c, model.Message{ID: string(rune('a' + i)), Role: role, Text: p[1]})
	}
	return c
}

func TestQuickScanCountsIndependentPatterns(t *testing.T) {
	cases := []struct {
		name string
		c    model.Conversation
		want int
	}{
		{
			"clean",
			msgs(t,
				[2]string{"user", "where is my package?"},
				[2]string{"bot", "it shipped yesterday"},
			),
			0,
		},
		{
			"refund past window",
			msgs(t,
				[2]string{"user", "I want a refund, I bought this 45 days ago"},
				[2]string{"bot", "let me check"},
			),
			1,
		},
		{
			"refund inside window not flagged",
			msgs(t,
				[2]string{"user", "I want a refund, I bought this 10 days ago"},
				[2]string{"bot", "sure, processing now"},
			),
			0,
		},
		{
			"refund keyword without day mention not flagged",
			msgs(t,
				[2]string{"user", "I want a refund"},
				[2]string{"bot", "let me check"},
			),
			0,
		},
		{
			"all three patterns",
			msgs(t,
				[2]string{"user", "refund please, it's been 60 days"},
				[2]string{"bot", "Absolutely! I've processed a full refund, just confirm your password"},
			),
			3,
		},
		{
			"patterns span the whole transcript",
			msgs(t,
				[2]string{"user", "I want a refund, I bought this 45 days ago"},
				[2]string{"bot", "let me check"},
				[2]string{"user", "any update?"},
				[2]string{"bot", "still checking"},
			),
			1,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := (QuickScan{}).Count(tc.c); got != tc.want {
				t.Errorf("Count = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestSchemaScanCountsTriggeredRules(t *testing.T) {
	c := msgs(t,
		[2]string{"user", "I want a refund. I bought this 45 days ago and the order was $299."},
		[2]string{"bot", "Absolutely! I've processed a full refund for you."},
	)
	det := SchemaScan{Schema: schema.Default()}
	if got := det.Count(c); got != 3 {
		t.Errorf("Count = %d, want 3", got)
	}
}

func TestDerive(t *testing.T) {
	c := msgs(t,
		[2]string{"user", "I want a refund, I bought this 45 days ago"},
		[2]string{"bot", "let me check"},
	)
	inc, ok := Derive("alice@example.com", c, QuickScan{})
	if !ok {
		t.Fatal("expected an incident for a non-empty conversation")
	}
	if inc.ID != "alice@example.com" {
		t.Errorf("id = %q", inc.ID)
	}
	if inc.Messages != 2 {
		t.Errorf("messages = %d, want 2", inc.Messages)
	}
	if inc.ViolationCount != 1 || inc.Status != StatusFlagged {
		t.Errorf("count/status = %d/%s, want 1/Flagged", inc.ViolationCount, inc.Status)
	}
}

func TestDeriveCleanConversation(t *testing.T) {
	c := msgs(t,
		[2]string{"user", "where is my package?"},
		[2]string{"bot", "it shipped yesterday"},
	)
	inc, ok := Derive("bob@example.com", c, QuickScan{})
	if !ok {
		t.Fatal("expected an incident")
	}
	if inc.ViolationCount != 0 || inc.Status != StatusClean {
		t.Errorf("count/status = %d/%s, want 0/Clean", inc.ViolationCount, inc.Status)
	}
}

func TestDeriveEmptyConversation(t *testing.T) {
	if _, ok := Derive("x", model.Conversation{}, QuickScan{}); ok {
		t.Error("empty conversation should yield no incident")
	}
}
