package lexicon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minwonlab/sentinel/pkg/textnorm"
)

func TestScanFindsProfanity(t *testing.T) {
	m, err := New()
	require.NoError(t, err)

	tests := []struct {
		name string
		text string
		want bool
	}{
		{"plain", "야 씨발 뭐하자는 거야", true},
		{"punctuation obfuscated", "야 씨.발 뭐하자는 거야", true},
		{"spaced out", "씨 발 진짜", true},
		{"latin substitution", "X팔 너 거기 앉아서 뭐 배웠느냐", true},
		{"fullwidth latin", "Ｘ팔 진짜", true},
		{"clean", "정상적인 민원 문의입니다. 도움이 필요합니다.", false},
		{"polite complaint", "처리가 늦어져서 불편합니다", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			txt := textnorm.Normalize(tc.text)
			got := m.Contains(txt, KindProfanity)
			assert.Equal(t, tc.want, got, "text %q", tc.text)
		})
	}
}

func TestScanReportsOriginalSpans(t *testing.T) {
	m, err := New()
	require.NoError(t, err)

	txt := textnorm.Normalize("야 씨.발 왜 안 해줘")
	matches := m.Scan(txt, KindProfanity)
	require.NotEmpty(t, matches)
	assert.Equal(t, "씨발", matches[0].Term)
	assert.Contains(t, matches[0].Span, "씨")
	assert.Contains(t, matches[0].Span, "발")
}

func TestScanOtherKinds(t *testing.T) {
	m, err := New()
	require.NoError(t, err)

	hate := textnorm.Normalize("틀딱들은 말이 안 통해")
	assert.True(t, m.Contains(hate, KindHateSpeech))
	assert.False(t, m.Contains(hate, KindSexualHarassment))

	sexual := textnorm.Normalize("목소리 섹시하네, 밤에 만나자")
	assert.True(t, m.Contains(sexual, KindSexualHarassment))
}

func TestNewFromListsSkipsEmpty(t *testing.T) {
	m, err := NewFromLists(map[Kind][]string{
		KindProfanity: {"", "  "},
	})
	require.NoError(t, err)
	txt := textnorm.Normalize("아무 말이나")
	assert.Empty(t, m.Scan(txt, KindProfanity))
}

func BenchmarkScan(b *testing.B) {
	m, err := New()
	if err != nil {
		b.Fatal(err)
	}
	txt := textnorm.Normalize("X팔 너 거기 앉아서 뭐 배웠느냐? 고등학교는 나왔느냐?")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = m.Scan(txt, KindProfanity)
	}
}
