package dto_test

import (
	"strings"
	"testing"

	"ai-chat-be/internal/dto"
	"ai-chat-be/internal/pkg/serverutils"

	"github.com/stretchr/testify/assert"
)

func TestSendMessageLengthBounds(t *testing.T) {
	assert.Error(t, serverutils.ValidateRequest(dto.SendMessageRequest{Message: ""}))
	assert.NoError(t, serverutils.ValidateRequest(dto.SendMessageRequest{Message: "hi"}))
	assert.NoError(t, serverutils.ValidateRequest(dto.SendMessageRequest{Message: strings.Repeat("a", 10000)}))
	assert.Error(t, serverutils.ValidateRequest(dto.SendMessageRequest{Message: strings.Repeat("a", 10001)}))
}
