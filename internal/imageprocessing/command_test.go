package imageprocessing

import (
	"errors"
	"strings"
	"testing"
)

func TestCommandRegistry_Register(t *testing.T) {
	registry := NewCommandRegistry()
	factory := func(params map[string]any) (Command, error) {
		return newMockCommand("TestCommand"), nil
	}

	if err := registry.Register("TestCommand", factory); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if err := registry.Register("TestCommand", factory); err == nil {
		t.Error("Expected error for duplicate registration")
	}
	if err := registry.Register("", factory); err == nil {
		t.Error("Expected error for empty name")
	}
	if err := registry.Register("NilFactory", nil); err == nil {
		t.Error("Expected error for nil factory")
	}
}

func TestCommandRegistry_Create(t *testing.T) {
	registry := NewCommandRegistry()
	_ = registry.Register("Ok", func(params map[string]any) (Command, error) {
		return newMockCommand("Ok"), nil
	})
	_ = registry.Register("Broken", func(params map[string]any) (Command, error) {
		return nil, errors.New("bad params")
	})

	command, err := registry.Create("Ok", nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if command.Name() != "Ok" {
		t.Errorf("Expected name 'Ok', got '%s'", command.Name())
	}

	if _, err := registry.Create("Missing", nil); err == nil {
		t.Error("Expected error for unknown command")
	}

	_, err = registry.Create("Broken", nil)
	if err == nil || !strings.Contains(err.Error(), "bad params") {
		t.Errorf("Expected wrapped factory error, got %v", err)
	}
}

func TestDefaultRegistry_HasCommands(t *testing.T) {
	expected := []string{"LineArtCommand", "OrientationCommand", "PixelScaleCommand", "PngConverterCommand"}
	names := DefaultRegistry.GetRegisteredNames()
	if strings.Join(names, ",") != strings.Join(expected, ",") {
		t.Errorf("Expected registered commands %v, got %v", expected, names)
	}
	for _, name := range expected {
		if !DefaultRegistry.IsRegistered(name) {
			t.Errorf("Expected %s to be registered", name)
		}
	}
}

func TestBuildCommands_ReportsIndex(t *testing.T) {
	_, err := BuildCommands([]CommandConfig{
		{Name: "PngConverterCommand"},
		{Name: "PixelScaleCommand", Params: map[string]any{}},
	})
	if err == nil {
		t.Fatal("Expected error for PixelScaleCommand without dimensions")
	}
	if !strings.Contains(err.Error(), "index 1") {
		t.Errorf("Expected error to mention index 1, got %v", err)
	}
}
