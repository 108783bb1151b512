package lexicon

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Built-in Korean term lists for call-center complaint screening. Each list
// includes common spelling variants and obfuscations; both sides of the
// match go through the same normalization, so variants with digits or
// punctuation are listed in their raw form.
//
// The lists are deliberately phrase-leaning: single syllables that appear
// inside ordinary words create false positives on agglutinative Korean.

func builtinTerms() map[Kind][]string {
	return map[Kind][]string{
		KindProfanity: {
			// 욕설
			"씨발", "시발", "씨팔", "시팔", "씨1발", "ㅅㅂ", "ㅆㅂ",
			"x팔", "엑스팔",
			"개새끼", "개색기", "개자식", "새끼야", "이 새끼", "저 새끼",
			"병신", "병1신", "ㅂㅅ",
			"지랄", "ㅈㄹ",
			"미친놈", "미친년", "미친새끼",
			"염병", "엿먹어", "꺼져라", "닥쳐라",
			"썅", "존나", "좆같", "개같은",
			// 저주
			"죽어라", "뒤져라", "뒤져버려", "천벌받", "망해라",
		},
		KindHateSpeech: {
			"틀딱", "맘충", "한남충", "김치녀", "급식충", "진지충",
			"짱깨", "쪽바리", "흑형",
			"장애인 주제", "벌레만도 못한", "기생충 같은",
			"외노자 주제", "늙은이 주제", "여자 주제", "남자 주제",
		},
		KindSexualHarassment: {
			"섹스", "성관계", "야동", "음란",
			"몸매 좋", "가슴 크", "벗어봐", "옷 벗",
			"만지고 싶", "안아줘", "뽀뽀해", "모텔 가자",
			"밤에 만나", "목소리 섹시", "변태 같",
		},
	}
}

// lexiconFile is the YAML override layout: one optional list per kind.
type lexiconFile struct {
	Profanity        []string `yaml:"profanity"`
	HateSpeech       []string `yaml:"hate_speech"`
	SexualHarassment []string `yaml:"sexual_harassment"`
}

// LoadLists reads a YAML lexicon override. Lists present in the file replace
// the built-in list of the same kind; absent lists keep the defaults.
func LoadLists(path string) (map[Kind][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon: %w", err)
	}
	var file lexiconFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse lexicon: %w", err)
	}
	lists := builtinTerms()
	if len(file.Profanity) > 0 {
		lists[KindProfanity] = file.Profanity
	}
	if len(file.HateSpeech) > 0 {
		lists[KindHateSpeech] = file.HateSpeech
	}
	if len(file.SexualHarassment) > 0 {
		lists[KindSexualHarassment] = file.SexualHarassment
	}
	return lists, nil
}
