package reflection_test

import (
	"testing"

	"github.com/junioryono/inject/internal/reflection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePropertyTag(t *testing.T) {
	tests := []struct {
		raw     string
		want    reflection.TagInfo
		wantErr bool
	}{
		{raw: "", want: reflection.TagInfo{}},
		{raw: "-", want: reflection.TagInfo{Ignore: true}},
		{raw: "optional", want: reflection.TagInfo{Optional: true}},
		{raw: "name=primary", want: reflection.TagInfo{Name: "primary", Named: true}},
		{raw: "name=", want: reflection.TagInfo{Named: true}},
		{raw: "name=primary, optional", want: reflection.TagInfo{Name: "primary", Named: true, Optional: true}},
		{raw: "constant=answer", want: reflection.TagInfo{Constant: "answer"}},
		{raw: "list=plugins", want: reflection.TagInfo{List: "plugins", IsList: true}},
		{raw: "map=", want: reflection.TagInfo{IsMap: true}},
		{raw: "constant=", wantErr: true},
		{raw: "bogus", wantErr: true},
		{raw: "bogus=1", wantErr: true},
		{raw: "name=a,constant=b", wantErr: true},
		{raw: "list=a,map=b", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := reflection.ParsePropertyTag(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
