package overlay

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/bbobrov/keystone-json-assignment/assignment"
	"github.com/bbobrov/keystone-json-assignment/assignment/inmem"
)

// --- ListGrantRoleIDs ---

// TestListGrantRoleIDs_Augments проверяет добавление роли карты.
func TestListGrantRoleIDs_Augments(t *testing.T) {
	d := newTestOverlay(t, testMap, inmem.New())
	ctx := context.Background()

	roleIDs, err := d.ListGrantRoleIDs(ctx, assignment.Grant{UserID: "uid-alice", ProjectID: "pid-infra"})
	if err != nil {
		t.Fatalf("ошибка списка ролей: %v", err)
	}
	if !reflect.DeepEqual(roleIDs, []string{"rid-member"}) {
		t.Errorf("ListGrantRoleIDs = %v, хотели [rid-member]", roleIDs)
	}

	roleIDs, _ = d.ListGrantRoleIDs(ctx, assignment.Grant{UserID: "uid-alice", ProjectID: "pid-ghost"})
	if len(roleIDs) != 0 {
		t.Errorf("для пары вне карты ожидался пустой список, получено %v", roleIDs)
	}
}

// TestListGrantRoleIDs_AppendsToDelegate проверяет, что роли делегата
// сохраняются, а роль карты добавляется в конец.
func TestListGrantRoleIDs_AppendsToDelegate(t *testing.T) {
	delegate := inmem.New()
	ctx := context.Background()
	delegate.CreateGrant(ctx, "rid-admin", assignment.Grant{UserID: "uid-alice", ProjectID: "pid-infra"})

	d := newTestOverlay(t, testMap, delegate)

	roleIDs, err := d.ListGrantRoleIDs(ctx, assignment.Grant{UserID: "uid-alice", ProjectID: "pid-infra"})
	if err != nil {
		t.Fatalf("ошибка списка ролей: %v", err)
	}
	if !reflect.DeepEqual(roleIDs, []string{"rid-admin", "rid-member"}) {
		t.Errorf("ListGrantRoleIDs = %v, хотели [rid-admin rid-member]", roleIDs)
	}
}

// TestListGrantRoleIDs_NoDedup проверяет, что роль карты добавляется
// даже если делегат уже вернул её.
func TestListGrantRoleIDs_NoDedup(t *testing.T) {
	delegate := inmem.New()
	ctx := context.Background()
	delegate.CreateGrant(ctx, "rid-member", assignment.Grant{UserID: "uid-alice", ProjectID: "pid-infra"})

	d := newTestOverlay(t, testMap, delegate)

	roleIDs, _ := d.ListGrantRoleIDs(ctx, assignment.Grant{UserID: "uid-alice", ProjectID: "pid-infra"})
	if !reflect.DeepEqual(roleIDs, []string{"rid-member", "rid-member"}) {
		t.Errorf("ListGrantRoleIDs = %v, хотели [rid-member rid-member]", roleIDs)
	}
}

// TestListGrantRoleIDs_InheritedIgnored проверяет, что флаг наследования
// не влияет на сопоставление с картой.
func TestListGrantRoleIDs_InheritedIgnored(t *testing.T) {
	d := newTestOverlay(t, testMap, inmem.New())

	roleIDs, err := d.ListGrantRoleIDs(context.Background(),
		assignment.Grant{UserID: "uid-alice", ProjectID: "pid-infra", Inherited: true})
	if err != nil {
		t.Fatalf("ошибка списка ролей: %v", err)
	}
	if !reflect.DeepEqual(roleIDs, []string{"rid-member"}) {
		t.Errorf("ListGrantRoleIDs = %v, хотели [rid-member]", roleIDs)
	}
}

// TestListGrantRoleIDs_GroupGrant проверяет, что групповые гранты
// не дополняются.
func TestListGrantRoleIDs_GroupGrant(t *testing.T) {
	d := newTestOverlay(t, testMap, inmem.New())

	roleIDs, err := d.ListGrantRoleIDs(context.Background(),
		assignment.Grant{GroupID: "gid-1", ProjectID: "pid-infra"})
	if err != nil {
		t.Fatalf("ошибка списка ролей: %v", err)
	}
	if len(roleIDs) != 0 {
		t.Errorf("для группового гранта ожидался пустой список, получено %v", roleIDs)
	}
}

// TestListGrantRoleIDs_DelegateError проверяет проброс ошибки делегата.
func TestListGrantRoleIDs_DelegateError(t *testing.T) {
	delegateErr := errors.New("делегат недоступен")
	delegate := &mockDriver{
		listGrantRoleIDsFn: func(_ context.Context, _ assignment.Grant) ([]string, error) {
			return nil, delegateErr
		},
	}
	d := newTestOverlay(t, testMap, delegate)

	_, err := d.ListGrantRoleIDs(context.Background(),
		assignment.Grant{UserID: "uid-alice", ProjectID: "pid-infra"})
	if !errors.Is(err, delegateErr) {
		t.Errorf("ожидалась ошибка делегата, получено %v", err)
	}
}

// --- CheckGrant ---

// TestCheckGrant_Synthetic проверяет подтверждение синтетического гранта.
func TestCheckGrant_Synthetic(t *testing.T) {
	d := newTestOverlay(t, testMap, inmem.New())

	err := d.CheckGrant(context.Background(), "rid-member",
		assignment.Grant{UserID: "uid-alice", ProjectID: "pid-infra"})
	if err != nil {
		t.Errorf("синтетический грант должен подтверждаться: %v", err)
	}
}

// TestCheckGrant_WrongRole проверяет отказ для чужой роли.
func TestCheckGrant_WrongRole(t *testing.T) {
	d := newTestOverlay(t, testMap, inmem.New())

	err := d.CheckGrant(context.Background(), "rid-admin",
		assignment.Grant{UserID: "uid-alice", ProjectID: "pid-infra"})
	if !errors.Is(err, assignment.ErrGrantNotFound) {
		t.Errorf("ожидалась ErrGrantNotFound, получено %v", err)
	}
}

// TestCheckGrant_PairNotInMap проверяет отказ для пары вне карты.
func TestCheckGrant_PairNotInMap(t *testing.T) {
	d := newTestOverlay(t, testMap, inmem.New())
	ctx := context.Background()

	// carol есть в карте, но без проектов.
	err := d.CheckGrant(ctx, "rid-member", assignment.Grant{UserID: "uid-carol", ProjectID: "pid-infra"})
	if !errors.Is(err, assignment.ErrGrantNotFound) {
		t.Errorf("ожидалась ErrGrantNotFound, получено %v", err)
	}

	// bob в карте, но не на billing.
	err = d.CheckGrant(ctx, "rid-member", assignment.Grant{UserID: "uid-bob", ProjectID: "pid-billing"})
	if !errors.Is(err, assignment.ErrGrantNotFound) {
		t.Errorf("ожидалась ErrGrantNotFound, получено %v", err)
	}
}

// TestCheckGrant_DelegateHit проверяет, что существующий в делегате грант
// подтверждается без участия карты.
func TestCheckGrant_DelegateHit(t *testing.T) {
	delegate := inmem.New()
	ctx := context.Background()
	g := assignment.Grant{UserID: "uid-dave", ProjectID: "pid-infra"}
	delegate.CreateGrant(ctx, "rid-admin", g)

	d := newTestOverlay(t, testMap, delegate)

	if err := d.CheckGrant(ctx, "rid-admin", g); err != nil {
		t.Errorf("грант делегата должен подтверждаться: %v", err)
	}
}

// TestCheckGrant_DelegateErrorPassthrough проверяет, что прочие ошибки
// делегата не маскируются картой.
func TestCheckGrant_DelegateErrorPassthrough(t *testing.T) {
	delegateErr := errors.New("делегат недоступен")
	delegate := &mockDriver{
		checkGrantFn: func(_ context.Context, _ string, _ assignment.Grant) error {
			return delegateErr
		},
	}
	d := newTestOverlay(t, testMap, delegate)

	err := d.CheckGrant(context.Background(), "rid-member",
		assignment.Grant{UserID: "uid-alice", ProjectID: "pid-infra"})
	if !errors.Is(err, delegateErr) {
		t.Errorf("ожидалась ошибка делегата, получено %v", err)
	}
}

// --- ListRoleAssignments ---

// TestListRoleAssignments_AppendsAll проверяет, что синтетические
// назначения добавляются целиком, без применения фильтра.
func TestListRoleAssignments_AppendsAll(t *testing.T) {
	delegate := inmem.New()
	ctx := context.Background()
	delegate.CreateGrant(ctx, "rid-admin", assignment.Grant{UserID: "uid-bob", ProjectID: "pid-billing"})
	delegate.CreateGrant(ctx, "rid-admin", assignment.Grant{UserID: "uid-dave", ProjectID: "pid-infra"})

	d := newTestOverlay(t, testMap, delegate)

	bob := "uid-bob"
	result, err := d.ListRoleAssignments(ctx, assignment.Filter{UserID: &bob})
	if err != nil {
		t.Fatalf("ошибка списка назначений: %v", err)
	}

	// Делегат отфильтровал свои назначения (осталось одно), синтетические
	// добавлены все три.
	if len(result) != 4 {
		t.Fatalf("назначений %d, ожидалось 4", len(result))
	}
	if result[0].UserID != "uid-bob" || result[0].RoleID != "rid-admin" {
		t.Errorf("первым должно идти назначение делегата, получено %+v", result[0])
	}
}

// TestListRoleAssignments_SyntheticShape проверяет форму и порядок
// синтетических назначений.
func TestListRoleAssignments_SyntheticShape(t *testing.T) {
	d := newTestOverlay(t, testMap, inmem.New())

	result, err := d.ListRoleAssignments(context.Background(), assignment.Filter{})
	if err != nil {
		t.Fatalf("ошибка списка назначений: %v", err)
	}

	want := []assignment.Assignment{
		{RoleID: "rid-member", UserID: "uid-alice", ProjectID: "pid-billing"},
		{RoleID: "rid-member", UserID: "uid-alice", ProjectID: "pid-infra"},
		{RoleID: "rid-member", UserID: "uid-bob", ProjectID: "pid-infra"},
	}
	if !reflect.DeepEqual(result, want) {
		t.Errorf("ListRoleAssignments = %+v, хотели %+v", result, want)
	}
}

// TestListRoleAssignments_EmptyMap проверяет чистую выдачу делегата
// при пустой карте.
func TestListRoleAssignments_EmptyMap(t *testing.T) {
	delegate := inmem.New()
	ctx := context.Background()
	delegate.CreateGrant(ctx, "rid-admin", assignment.Grant{UserID: "uid-dave", ProjectID: "pid-infra"})

	d := newTestOverlay(t, "", delegate)

	result, err := d.ListRoleAssignments(ctx, assignment.Filter{})
	if err != nil {
		t.Fatalf("ошибка списка назначений: %v", err)
	}
	if len(result) != 1 {
		t.Errorf("назначений %d, ожидалось 1", len(result))
	}
}

// TestListRoleAssignments_DelegateError проверяет проброс ошибки делегата.
func TestListRoleAssignments_DelegateError(t *testing.T) {
	delegateErr := errors.New("делегат недоступен")
	delegate := &mockDriver{
		listRoleAssignmentsFn: func(_ context.Context, _ assignment.Filter) ([]assignment.Assignment, error) {
			return nil, delegateErr
		},
	}
	d := newTestOverlay(t, testMap, delegate)

	_, err := d.ListRoleAssignments(context.Background(), assignment.Filter{})
	if !errors.Is(err, delegateErr) {
		t.Errorf("ожидалась ошибка делегата, получено %v", err)
	}
}

// --- Записи ---

// TestWrites_ForwardedToDelegate проверяет проксирование записей.
func TestWrites_ForwardedToDelegate(t *testing.T) {
	delegate := inmem.New()
	d := newTestOverlay(t, testMap, delegate)
	ctx := context.Background()

	g := assignment.Grant{UserID: "uid-dave", ProjectID: "pid-infra"}
	if err := d.CreateGrant(ctx, "rid-admin", g); err != nil {
		t.Fatalf("ошибка выдачи гранта: %v", err)
	}
	if err := delegate.CheckGrant(ctx, "rid-admin", g); err != nil {
		t.Errorf("грант должен попасть в делегат: %v", err)
	}

	if err := d.AddRoleToUserProject(ctx, "uid-dave", "pid-billing", "rid-admin"); err != nil {
		t.Fatalf("ошибка назначения роли: %v", err)
	}
	if delegate.Count() != 2 {
		t.Errorf("в делегате %d назначений, ожидалось 2", delegate.Count())
	}

	if err := d.DeleteGrant(ctx, "rid-admin", g); err != nil {
		t.Fatalf("ошибка отзыва гранта: %v", err)
	}
	if err := d.RemoveRoleFromUserProject(ctx, "uid-dave", "pid-billing", "rid-admin"); err != nil {
		t.Fatalf("ошибка отзыва роли: %v", err)
	}
	if delegate.Count() != 0 {
		t.Errorf("в делегате %d назначений, ожидалось 0", delegate.Count())
	}
}

// TestWrites_DelegateErrorPassthrough проверяет проброс ошибок записи.
func TestWrites_DelegateErrorPassthrough(t *testing.T) {
	d := newTestOverlay(t, testMap, inmem.New())

	err := d.DeleteGrant(context.Background(), "rid-admin",
		assignment.Grant{UserID: "uid-dave", ProjectID: "pid-infra"})
	if !errors.Is(err, assignment.ErrGrantNotFound) {
		t.Errorf("ожидалась ErrGrantNotFound от делегата, получено %v", err)
	}
}

// TestWrites_SyntheticGrantNotRevocable проверяет, что запись не влияет
// на синтетические гранты.
func TestWrites_SyntheticGrantNotRevocable(t *testing.T) {
	d := newTestOverlay(t, testMap, inmem.New())
	ctx := context.Background()

	// Отзыв синтетического гранта уходит в делегат, где его нет.
	err := d.DeleteGrant(ctx, "rid-member",
		assignment.Grant{UserID: "uid-alice", ProjectID: "pid-infra"})
	if !errors.Is(err, assignment.ErrGrantNotFound) {
		t.Errorf("ожидалась ErrGrantNotFound, получено %v", err)
	}

	// Грант по-прежнему виден в чтениях.
	if err := d.CheckGrant(ctx, "rid-member",
		assignment.Grant{UserID: "uid-alice", ProjectID: "pid-infra"}); err != nil {
		t.Errorf("синтетический грант должен остаться: %v", err)
	}
}

// TestCascadeDeletes_ForwardedAndMapUntouched проверяет, что каскадные
// удаления уходят в делегат и не трогают снапшот.
func TestCascadeDeletes_ForwardedAndMapUntouched(t *testing.T) {
	delegate := inmem.New()
	ctx := context.Background()
	delegate.CreateGrant(ctx, "rid-admin", assignment.Grant{UserID: "uid-alice", ProjectID: "pid-infra"})

	d := newTestOverlay(t, testMap, delegate)

	if err := d.DeleteUserAssignments(ctx, "uid-alice"); err != nil {
		t.Fatalf("ошибка каскадного удаления: %v", err)
	}
	if delegate.Count() != 0 {
		t.Errorf("в делегате %d назначений, ожидалось 0", delegate.Count())
	}

	// Синтетические гранты alice остались.
	roleIDs, _ := d.ListGrantRoleIDs(ctx, assignment.Grant{UserID: "uid-alice", ProjectID: "pid-infra"})
	if !reflect.DeepEqual(roleIDs, []string{"rid-member"}) {
		t.Errorf("ListGrantRoleIDs = %v, хотели [rid-member]", roleIDs)
	}
	if d.Stats().Pairs != 3 {
		t.Errorf("Pairs = %d, ожидалось 3", d.Stats().Pairs)
	}
}
