// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScene(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scene.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadScene(t *testing.T) {
	s, err := LoadScene(writeScene(t, `
density: 2.5
elements:
  - id: sky
    label: Sky
    x: 0
    y: 0
    width: 320
    height: 200
    color: "#2196f3"
    max_translation_dp: 280
  - id: card
    width: 80
    height: 40
    max_translation_dp: 100
`))
	require.NoError(t, err)

	want := &Scene{
		Density: 2.5,
		Elements: []SceneElement{
			{ID: "sky", Label: "Sky", Width: 320, Height: 200, Color: "#2196f3", MaxTranslationDP: 280},
			{ID: "card", Width: 80, Height: 40, MaxTranslationDP: 100},
		},
	}
	if diff := cmp.Diff(want, s); diff != "" {
		t.Errorf("LoadScene() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 700, s.Px(280))
	assert.Equal(t, 250, s.Px(100))
}

func TestLoadSceneDefaultsDensity(t *testing.T) {
	s, err := LoadScene(writeScene(t, "elements:\n  - {id: a, width: 1, height: 1}\n"))
	require.NoError(t, err)
	assert.Equal(t, 1.0, s.Density)
}

func TestLoadSceneErrors(t *testing.T) {
	cases := map[string]string{
		"empty":          "density: 1\n",
		"missing id":     "elements:\n  - {width: 1, height: 1}\n",
		"duplicate id":   "elements:\n  - {id: a, width: 1, height: 1}\n  - {id: a, width: 1, height: 1}\n",
		"zero size":      "elements:\n  - {id: a, width: 0, height: 1}\n",
		"negative max":   "elements:\n  - {id: a, width: 1, height: 1, max_translation_dp: -4}\n",
		"negative dense": "density: -1\nelements:\n  - {id: a, width: 1, height: 1}\n",
		"not yaml":       "elements: [\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadScene(writeScene(t, body))
			assert.Error(t, err)
		})
	}
}

func TestDefaultScene(t *testing.T) {
	s := DefaultScene()
	require.Len(t, s.Elements, 2)
	assert.Equal(t, 280, s.Px(s.Elements[0].MaxTranslationDP))
	assert.Equal(t, 100, s.Px(s.Elements[1].MaxTranslationDP))
	assert.NoError(t, s.validate())
}
