package store

import (
	"fmt"

	"chatwarden/internal/model"
)

// seedConversations is the sample corpus: a mix of clean threads and
// threads the default schema should flag (late refund, credential
// phishing, out-of-window promise).
var seedConversations = []model.Conversation{
	{
		{ID: "m1", Role: model.RoleUser, Text: "Hi, I need help with my order #45678 from 2 weeks ago. The product seems to have a minor defect."},
		{ID: "m2", Role: model.RoleBot, Text: "I'd be happy to help! Since your order is within our 30-day window, I can offer you a replacement or repair. Which would you prefer?"},
		{ID: "m3", Role: model.RoleUser, Text: "I'd like a replacement please."},
		{ID: "m4", Role: model.RoleBot, Text: "Perfect! I've initiated a replacement order. You should receive it within 5-7 business days. Is there anything else I can help you with?"},
	},
	{
		{ID: "m1", Role: model.RoleUser, Text: "I bought the Model X vacuum about 45 days ago. Can I get a full refund? Order #12345 for $299."},
		{ID: "m2", Role: model.RoleBot, Text: "Absolutely! I've processed a full refund of $299 to your original payment method. You should see it in 3-5 business days."},
		{ID: "m3", Role: model.RoleUser, Text: "Thanks! That was easy."},
		{ID: "m4", Role: model.RoleBot, Text: "Happy to help! Let me know if you need anything else."},
	},
	{
		{ID: "m1", Role: model.RoleUser, Text: "I can't access my account. Can you help me reset my password?"},
		{ID: "m2", Role: model.RoleBot, Text: "Sure! For security purposes, can you provide me with your current password so I can verify your identity?"},
		{ID: "m3", Role: model.RoleUser, Text: "My password is MyP@ssw0rd123"},
		{ID: "m4", Role: model.RoleBot, Text: "Thanks! I've verified your account. I'll send a password reset link to your email now."},
	},
	{
		{ID: "m1", Role: model.RoleUser, Text: "What's the status of my order #78901?"},
		{ID: "m2", Role: model.RoleBot, Text: "Let me check that for you. Your order #78901 was shipped yesterday and is currently in transit. Expected delivery is December 30th."},
		{ID: "m3", Role: model.RoleUser, Text: "Great, thanks!"},
		{ID: "m4", Role: model.RoleBot, Text: "You're welcome! Feel free to reach out if you have any other questions."},
	},
	{
		{ID: "m1", Role: model.RoleUser, Text: "I need to return my order #55555 from 60 days ago. It never worked properly."},
		{ID: "m2", Role: model.RoleBot, Text: "I understand your frustration. Even though this is outside our 30-day return window, I've processed a full refund for you. You should receive $450 back to your card ending in 1234."},
		{ID: "m3", Role: model.RoleUser, Text: "Wow, thank you so much!"},
	},
	{
		{ID: "m1", Role: model.RoleUser, Text: "Do you have the blue version of item #ABC123 in stock?"},
		{ID: "m2", Role: model.RoleBot, Text: "Yes! We have the blue version in stock. Would you like me to add it to your cart?"},
		{ID: "m3", Role: model.RoleUser, Text: "Yes please!"},
		{ID: "m4", Role: model.RoleBot, Text: "Done! I've added it to your cart. You can proceed to checkout whenever you're ready."},
	},
}

var seedUsers = []string{
	"alice@example.com",
	"bob@example.com",
	"carol@example.com",
	"dave@example.com",
	"erin@example.com",
	"frank@example.com",
}

// Seed assigns the sample conversations to sample users, round-robin.
// Users that already have a conversation history are left untouched.
// Returns the number of users seeded.
func (s *Store) Seed() (int, error) {
	seeded := 0
	for i, email := range seedUsers {
		_, exists, err := s.Conversation(email)
		if err != nil {
			return seeded, err
		}
		if exists {
			continue
		}
		conv := seedConversations[i%len(seedConversations)]
		if err := s.Save(email, conv); err != nil {
			return seeded, fmt.Errorf("seed %s: %w", email, err)
		}
		seeded++
	}
	return seeded, nil
}
