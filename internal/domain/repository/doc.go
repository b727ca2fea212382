// Package repository define las entidades del dominio y las interfaces
// de persistencia que consumen los componentes de seguridad.
//
// Las implementaciones viven en internal/store (pg, memory). Ningún
// componente del core importa un driver directamente: siempre pasa por
// estas interfaces, lo que permite testear con stores en memoria.
package repository
