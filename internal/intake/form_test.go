package intake_test

import (
	"errors"
	"testing"

	"greenbuilder/internal/intake"
	"greenbuilder/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomCountNeverBelowOne(t *testing.T) {
	for _, kind := range models.RoomKinds {
		t.Run(string(kind), func(t *testing.T) {
			form := intake.NewForm()

			// Любое количество декрементов в любом порядке не опускает счетчик ниже 1
			require.NoError(t, form.AdjustRoom(kind, -5))
			assert.Equal(t, 1, form.Draft().Rooms[kind])

			require.NoError(t, form.AdjustRoom(kind, 3))
			assert.Equal(t, 4, form.Draft().Rooms[kind])

			require.NoError(t, form.AdjustRoom(kind, -1))
			require.NoError(t, form.AdjustRoom(kind, -1))
			require.NoError(t, form.AdjustRoom(kind, -1))
			require.NoError(t, form.AdjustRoom(kind, -1))
			require.NoError(t, form.AdjustRoom(kind, -1))
			assert.Equal(t, 1, form.Draft().Rooms[kind])
		})
	}

	t.Run("unknown kind rejected", func(t *testing.T) {
		form := intake.NewForm()
		assert.Error(t, form.AdjustRoom(models.RoomKind("garage"), 1))
	})
}

func TestDirtyFlagTracksDefaults(t *testing.T) {
	form := intake.NewForm()
	assert.False(t, form.IsDirty())
	assert.Equal(t, intake.StateEmpty, form.State())

	require.NoError(t, form.SetField(intake.FieldDesignName, "Eco Home"))
	assert.True(t, form.IsDirty())
	assert.Equal(t, intake.StateEditing, form.State())

	// Возврат к значению по умолчанию снимает флаг
	require.NoError(t, form.SetField(intake.FieldDesignName, ""))
	assert.False(t, form.IsDirty())
	assert.Equal(t, intake.StateEmpty, form.State())

	t.Run("room count divergence", func(t *testing.T) {
		form := intake.NewForm()
		require.NoError(t, form.AdjustRoom(models.RoomBedroom, 1))
		assert.True(t, form.IsDirty())
		require.NoError(t, form.AdjustRoom(models.RoomBedroom, -1))
		assert.False(t, form.IsDirty())
	})

	t.Run("window toggle divergence", func(t *testing.T) {
		form := intake.NewForm()
		require.NoError(t, form.ToggleWindow(models.WindowLeft))
		assert.True(t, form.IsDirty())
		require.NoError(t, form.ToggleWindow(models.WindowLeft))
		assert.False(t, form.IsDirty())
	})

	t.Run("special request divergence", func(t *testing.T) {
		form := intake.NewForm()
		require.NoError(t, form.SetField(intake.FieldSpecialRequest, "south facing"))
		assert.True(t, form.IsDirty())
	})
}

func TestBeginSubmitValidatesRequiredFields(t *testing.T) {
	cases := []struct {
		name    string
		prepare func(f *intake.Form)
		missing string
	}{
		{
			name:    "all empty",
			prepare: func(f *intake.Form) {},
			missing: "designName",
		},
		{
			name: "missing length",
			prepare: func(f *intake.Form) {
				_ = f.SetField(intake.FieldDesignName, "Eco Home")
				_ = f.SetField(intake.FieldWidth, "8")
			},
			missing: "length",
		},
		{
			name: "missing width",
			prepare: func(f *intake.Form) {
				_ = f.SetField(intake.FieldDesignName, "Eco Home")
				_ = f.SetField(intake.FieldLength, "10")
			},
			missing: "width",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			form := intake.NewForm()
			tc.prepare(form)

			_, err := form.BeginSubmit()
			require.Error(t, err)

			var vErr *models.ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tc.missing, vErr.Field)
			// Валидация не переводит форму в Submitting
			assert.NotEqual(t, intake.StateSubmitting, form.State())
		})
	}
}

func TestSubmitLifecycle(t *testing.T) {
	form := intake.NewForm()
	require.NoError(t, form.SetField(intake.FieldDesignName, "Eco Home"))
	require.NoError(t, form.SetField(intake.FieldLength, "10"))
	require.NoError(t, form.SetField(intake.FieldWidth, "8"))

	draft, err := form.BeginSubmit()
	require.NoError(t, err)
	assert.Equal(t, "Eco Home", draft.DesignName)
	assert.Equal(t, intake.StateSubmitting, form.State())

	t.Run("second submit rejected while in flight", func(t *testing.T) {
		_, err := form.BeginSubmit()
		assert.ErrorIs(t, err, models.ErrSubmissionInFlight)
	})

	t.Run("mutations rejected while in flight", func(t *testing.T) {
		assert.ErrorIs(t, form.SetField(intake.FieldDesignName, "x"), models.ErrFormLocked)
		assert.ErrorIs(t, form.AdjustRoom(models.RoomKitchen, 1), models.ErrFormLocked)
		assert.ErrorIs(t, form.ToggleWindow(models.WindowTop), models.ErrFormLocked)
	})

	t.Run("failure retains draft", func(t *testing.T) {
		form.FailSubmit()
		assert.Equal(t, intake.StateEditing, form.State())
		assert.True(t, form.IsDirty())
		assert.Equal(t, "Eco Home", form.Draft().DesignName)
	})

	t.Run("success clears dirty", func(t *testing.T) {
		_, err := form.BeginSubmit()
		require.NoError(t, err)
		form.CompleteSubmit()
		assert.Equal(t, intake.StateSubmitted, form.State())
		assert.False(t, form.IsDirty())
	})
}

func TestRequestReset(t *testing.T) {
	t.Run("clean form clears immediately", func(t *testing.T) {
		form := intake.NewForm()
		assert.False(t, form.RequestReset())
		assert.Equal(t, intake.StateEmpty, form.State())
	})

	t.Run("dirty form requires confirmation", func(t *testing.T) {
		form := intake.NewForm()
		require.NoError(t, form.SetField(intake.FieldDesignName, "Eco Home"))

		assert.True(t, form.RequestReset())
		// Отмена подтверждения: черновик не тронут
		assert.Equal(t, "Eco Home", form.Draft().DesignName)
		assert.True(t, form.IsDirty())

		// Подтверждение: черновик очищен
		form.Reset()
		assert.Equal(t, intake.StateEmpty, form.State())
		assert.False(t, form.IsDirty())
		assert.Equal(t, "", form.Draft().DesignName)
		assert.Equal(t, 1, form.Draft().Rooms[models.RoomBedroom])
	})
}

func TestLoadSeedsFromExistingDraft(t *testing.T) {
	draft := models.NewDesignDraft()
	draft.DesignName = "Eco Home"
	draft.Rooms[models.RoomBedroom] = 2

	form := intake.NewForm()
	form.Load(draft)

	assert.Equal(t, intake.StateEditing, form.State())
	assert.True(t, form.IsDirty())
	assert.Equal(t, 2, form.Draft().Rooms[models.RoomBedroom])

	t.Run("nil maps backfilled", func(t *testing.T) {
		form := intake.NewForm()
		form.Load(models.DesignDraft{DesignName: "Bare"})
		assert.Equal(t, 1, form.Draft().Rooms[models.RoomKitchen])
		assert.False(t, form.Draft().Windows[models.WindowTop])
	})
}
