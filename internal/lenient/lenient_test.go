package lenient

import (
	"math"
	"net/url"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVector3Forms(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want Vector3
	}{
		{"object", `{"x":1,"y":2,"z":3}`, Vector3{1, 2, 3}},
		{"upper keys", `{"X":1,"Y":2,"Z":3}`, Vector3{1, 2, 3}},
		{"encoded object", `"{\"x\":10,\"y\":0.5,\"z\":-4}"`, Vector3{10, 0.5, -4}},
		{"array", `[4,5,6]`, Vector3{4, 5, 6}},
		{"encoded array", `"[7, 8, 9]"`, Vector3{7, 8, 9}},
		{"numeric strings", `{"x":"1.5","y":"2","z":"3"}`, Vector3{1.5, 2, 3}},
		{"partial", `{"x":3}`, Vector3{3, 0, 0}},
		{"garbage", `"not a vector"`, DefaultSpawn},
		{"broken json string", `"{x:1"`, DefaultSpawn},
		{"null", `null`, DefaultSpawn},
		{"short array", `[1,2]`, DefaultSpawn},
		{"empty string", `""`, DefaultSpawn},
		{"infinite component", `["Inf",5,0]`, DefaultSpawn},
		{"nan object", `{"x":"NaN"}`, DefaultSpawn},
		{"nan beside finite", `{"x":"nan","y":2}`, Vector3{0, 2, 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var v Vector3
			require.NoError(t, json.Unmarshal([]byte(tc.in), &v))
			assert.Equal(t, tc.want, v)
		})
	}
}

func TestVector3InsideStruct(t *testing.T) {
	var npc struct {
		Spawn Vector3 `json:"spawn_position"`
		Name  string  `json:"name"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"spawn_position":"oops","name":"Guard"}`), &npc))
	assert.Equal(t, DefaultSpawn, npc.Spawn)
	assert.Equal(t, "Guard", npc.Name)
}

func TestVector3ScanValue(t *testing.T) {
	v := Vector3{X: 1, Y: 2.5, Z: -3}
	stored, err := v.Value()
	require.NoError(t, err)
	var back Vector3
	require.NoError(t, back.Scan(stored))
	assert.Equal(t, v, back)

	require.NoError(t, back.Scan(nil))
	assert.Equal(t, DefaultSpawn, back)
}

func TestStringListForms(t *testing.T) {
	cases := []struct {
		in   string
		want StringList
	}{
		{`["move","chat"]`, StringList{"move", "chat"}},
		{`"[\"trade\",\"quest\"]"`, StringList{"trade", "quest"}},
		{`"move, chat , ,combat"`, StringList{"move", "chat", "combat"}},
		{`[" a ", "", 3, true, {"x":1}]`, StringList{"a", "3", "true"}},
		{`null`, StringList{}},
		{`42`, StringList{}},
	}
	for _, tc := range cases {
		got := ParseStringList([]byte(tc.in))
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Fatalf("ParseStringList(%s) mismatch (-want +got):\n%s", tc.in, diff)
		}
	}
}

func TestStringListMarshalNil(t *testing.T) {
	var s struct {
		Tags StringList `json:"tags"`
	}
	b, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"tags":[]}`, string(b))
}

func TestLocationData(t *testing.T) {
	d := ParseLocationData([]byte(`"{\"area\":\"Harbor\",\"interactable\":\"true\",\"tags\":\"dock,water\"}"`))
	assert.Equal(t, "Harbor", d.Area)
	assert.True(t, d.Interactable)
	assert.Equal(t, StringList{"dock", "water"}, d.Tags)

	assert.True(t, ParseLocationData([]byte(`"nonsense"`)).IsZero())
	assert.True(t, ParseLocationData(nil).IsZero())
}

func TestObjectAliases(t *testing.T) {
	o, err := ParseObject([]byte(`{"assetId":"123","displayName":"Bob","responseRadius":"35","is_location":"on","spawnPosition":"[1,2,3]"}`))
	require.NoError(t, err)
	assert.Equal(t, "123", o.String("asset_id", "assetId", "assetID"))
	assert.Equal(t, "Bob", o.String("display_name", "displayName"))
	assert.Equal(t, 35, o.Int(20, "response_radius", "responseRadius"))
	assert.Equal(t, 20, o.Int(20, "missing"))
	assert.True(t, o.Bool("is_location"))
	assert.Equal(t, Vector3{1, 2, 3}, o.Vector3("spawn_position", "spawnPosition"))
	assert.Nil(t, o.OptFloat("position_x"))
	assert.True(t, o.Has("assetId"))
	assert.False(t, o.Has("asset_id"))
}

func TestObjectRejectsNonFinite(t *testing.T) {
	o, err := ParseObject([]byte(`{"position_x":"NaN","position_y":"-Infinity","radius":"+Inf","spawn_position":["Inf",5,0]}`))
	require.NoError(t, err)
	assert.Nil(t, o.OptFloat("position_x"))
	assert.Nil(t, o.OptFloat("position_y"))
	assert.Equal(t, 1.5, o.Float(1.5, "position_x"))
	assert.Equal(t, 20, o.Int(20, "radius"))
	v := o.Vector3("spawn_position")
	assert.Equal(t, DefaultSpawn, v)
	_, err = v.Value()
	assert.NoError(t, err)
}

func TestObjectIntClampsToRange(t *testing.T) {
	o, err := ParseObject([]byte(`{"big":"1e30","small":-1e30,"ok":"42.9"}`))
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt, o.Int(0, "big"))
	assert.Equal(t, math.MinInt, o.Int(0, "small"))
	assert.Equal(t, 42, o.Int(0, "ok"))
}

func TestObjectNumericAssetID(t *testing.T) {
	o, err := ParseObject([]byte(`{"asset_id": 123456789}`))
	require.NoError(t, err)
	assert.Equal(t, "123456789", o.String("asset_id"))
}

func TestParseObjectRejectsNonObjects(t *testing.T) {
	_, err := ParseObject([]byte(`[1,2]`))
	assert.ErrorIs(t, err, ErrNotObject)
	o, err := ParseObject(nil)
	require.NoError(t, err)
	assert.Empty(t, o)
}

func TestFromForm(t *testing.T) {
	o := FromForm(url.Values{
		"display_name": {"Merchant"},
		"abilities":    {`["trade","chat"]`},
		"game_id":      {"3"},
	})
	assert.Equal(t, "Merchant", o.String("display_name"))
	assert.Equal(t, StringList{"trade", "chat"}, o.StringList("abilities"))
	assert.Equal(t, 3, o.Int(0, "game_id"))
}

func TestDecodeFallback(t *testing.T) {
	type payload struct{ A int }
	assert.Equal(t, payload{A: 1}, Decode([]byte(`"{\"A\":1}"`), payload{}))
	assert.Equal(t, payload{A: 9}, Decode([]byte(`{`), payload{A: 9}))
}
