package provider

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daikw/angertranslator/internal/reliability"
)

func TestElevenLabsProvider_Synthesize(t *testing.T) {
	t.Run("sends audio tags for eleven_v3", func(t *testing.T) {
		var got ElevenLabsTTSRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/text-to-speech/voice-1", r.URL.Path)
			assert.Equal(t, "mp3_44100_128", r.URL.Query().Get("output_format"))
			assert.Equal(t, "test-api-key", r.Header.Get("xi-api-key"))
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.Write([]byte("audio"))
		}))
		defer server.Close()

		provider := NewElevenLabsProvider("test-api-key")
		provider.baseURL = server.URL

		reader, err := provider.Synthesize(context.Background(), "This is", SynthesizeOptions{
			Voice:     "voice-1",
			Model:     ElevenLabsAudioTagModel,
			Stability: 0.2,
			Style:     0.6,
			Speed:     1.5,
			Cues:      []string{"angry", " shouting "},
		})
		require.NoError(t, err)
		data, _ := io.ReadAll(reader)
		reader.Close()

		assert.Equal(t, "audio", string(data))
		assert.Equal(t, "[angry] [shouting] This is", got.Text)
		assert.Equal(t, ElevenLabsAudioTagModel, got.ModelID)
		assert.Equal(t, 0.2, got.VoiceSettings.Stability)
		assert.Equal(t, 0.75, got.VoiceSettings.SimilarityBoost)
		assert.Equal(t, 0.6, got.VoiceSettings.Style)
		assert.Equal(t, 1.2, got.VoiceSettings.Speed)
	})

	t.Run("plain text for other models", func(t *testing.T) {
		var got ElevenLabsTTSRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.Write([]byte("audio"))
		}))
		defer server.Close()

		provider := NewElevenLabsProvider("test-api-key")
		provider.baseURL = server.URL

		reader, err := provider.Synthesize(context.Background(), "bad!", SynthesizeOptions{Cues: []string{"angry"}})
		require.NoError(t, err)
		reader.Close()
		assert.Equal(t, "bad!", got.Text)
		assert.Equal(t, "eleven_multilingual_v2", got.ModelID)
	})

	t.Run("parses detail errors", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"detail":{"status":"invalid_api_key","message":"Invalid API key"}}`))
		}))
		defer server.Close()

		provider := NewElevenLabsProvider("bad")
		provider.baseURL = server.URL

		_, err := provider.Synthesize(context.Background(), "x", SynthesizeOptions{})
		require.Error(t, err)
		assert.Equal(t, reliability.KindInvalidCredential, reliability.KindOf(err))
		assert.Contains(t, err.Error(), "Invalid API key")
	})
}

func TestWithAudioTags(t *testing.T) {
	assert.Equal(t, "text", WithAudioTags("text", nil, ElevenLabsAudioTagModel))
	assert.Equal(t, "text", WithAudioTags("text", []string{"a"}, "eleven_turbo_v2_5"))
	assert.Equal(t, "[a] text", WithAudioTags("text", []string{"a", " "}, ElevenLabsAudioTagModel))
}

func TestElevenLabsProvider_ListVoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, ElevenLabsVoicesEndpoint, r.URL.Path)
		w.Write([]byte(`{"voices":[
			{"voice_id":"v1","name":"Adam","labels":{"gender":"male"},"available_for_tts":true},
			{"voice_id":"v2","name":"Hidden","available_for_tts":false},
			{"voice_id":"v3","name":"Eri","fine_tuning":{"language":"ja"},"available_for_tts":true}
		]}`))
	}))
	defer server.Close()

	provider := NewElevenLabsProvider("k")
	provider.baseURL = server.URL

	voices, err := provider.ListVoices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Voice{
		{ID: "v1", Name: "Adam", Language: "multilingual", Gender: "male"},
		{ID: "v3", Name: "Eri", Language: "ja"},
	}, voices)
}

func TestConvertToElevenLabsFormat(t *testing.T) {
	assert.Equal(t, "mp3_44100_128", convertToElevenLabsFormat(""))
	assert.Equal(t, "pcm_44100", convertToElevenLabsFormat("WAV"))
	assert.Equal(t, "ulaw_8000", convertToElevenLabsFormat("ulaw"))
}

func TestElevenLabsError_String(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{`{"detail":"quota exceeded"}`, "ElevenLabs API Error: quota exceeded"},
		{`{"detail":{"message":"bad voice"}}`, "ElevenLabs API Error: bad voice"},
		{`{"detail":[{"msg":"field required"}]}`, "ElevenLabs API Error: field required"},
	}
	for _, tt := range tests {
		var e ElevenLabsError
		require.NoError(t, json.Unmarshal([]byte(tt.body), &e))
		assert.Equal(t, tt.want, e.String())
	}
}
