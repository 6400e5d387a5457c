package ai

import (
	"fmt"

	models "io.winapps.starlight/internal/models/account"
)

type prompts struct {
	enhanceTmpl  string
	locationTmpl string
	coordsTmpl   string
	noInfo       string
}

var promptSets = map[string]prompts{
	"ko": {
		enhanceTmpl: `당신은 천문학 전문가이자 고급 천문 잡지의 시적인 에디터입니다.
관측자가 작성한 노트를 바탕으로, 전문적이면서도 경이로움이 느껴지는 글로 다듬어주세요.
한국어로 작성해야 합니다.

관측 대상: %s
작성된 노트: "%s"

150단어 이내로 작성하고, 마크다운 서식 없이 줄글로 작성해주세요.`,
		locationTmpl: `이 장소(%s)에 대한 흥미로운 천문학적 또는 지리학적 사실을 한국어로 알려주세요.
%s
별을 사랑하는 사람들에게 영감을 줄 수 있도록 간결하고 시적인 어조로 한국어로 작성해주세요.`,
		coordsTmpl: "좌표(%.5f, %.5f)를 기준으로 천체 관측을 위한 관측 조건(광공해, 고도 등)을 정확하게 분석해주세요.",
		noInfo:     "정보를 찾을 수 없습니다.",
	},
	"en": {
		enhanceTmpl: `You are an astronomy expert and the poetic editor of a fine astronomy magazine.
Rewrite the observer's note below into prose that is precise yet full of wonder.
Write in English.

Target: %s
Note: "%s"

Keep it under 150 words, plain paragraphs, no markdown.`,
		locationTmpl: `Share interesting astronomical or geographical facts about this place (%s).
%s
Write concisely, in a poetic tone that inspires people who love the stars.`,
		coordsTmpl: "Using the coordinates (%.5f, %.5f), analyse the observing conditions (light pollution, altitude) accurately.",
		noInfo:     "No information available.",
	},
}

func promptsFor(language string) prompts {
	if p, ok := promptSets[language]; ok {
		return p
	}
	return promptSets["ko"]
}

func (p prompts) enhance(text, target string) string {
	return fmt.Sprintf(p.enhanceTmpl, target, text)
}

func (p prompts) location(location string, coords *models.Coordinates) string {
	var c string
	if coords != nil {
		c = fmt.Sprintf(p.coordsTmpl, coords.Lat, coords.Lng)
	}
	return fmt.Sprintf(p.locationTmpl, location, c)
}
